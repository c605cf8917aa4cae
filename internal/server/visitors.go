package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/store"
)

// submitVisitor is open to anonymous visitors. A confirmation email to the
// visitor is queued on success.
func (s *Server) submitVisitor(c *gin.Context) {
	var sub models.VisitorSubmission
	if !s.bindJSON(c, &sub) {
		return
	}
	sub.ID = 0
	ctx := c.Request.Context()

	form, err := store.NewRepo[models.VisitorForm](s.deps.Store).Get(ctx, sub.FormID)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(c, models.FieldErrors{"form": "does_not_exist"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := store.NewRepo[models.VisitorSubmission](s.deps.Store).Create(ctx, &sub); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.InfoContext(ctx, "visitor submission received", "form_id", form.ID, "submission_id", sub.ID)
	s.deps.Publisher.Publish(notify.VisitorSubmitted{Submission: sub, Form: *form})
	c.JSON(http.StatusCreated, sub)
}
