package server

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/store"
)

// filter maps a query parameter onto a column. parse returns false for
// values that should be ignored.
type filter struct {
	param  string
	column string
	parse  func(string) (any, bool)
}

func textFilter(param, column string) filter {
	return filter{param: param, column: column, parse: func(v string) (any, bool) { return v, v != "" }}
}

func boolFilter(param, column string) filter {
	return filter{param: param, column: column, parse: func(v string) (any, bool) {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}}
}

func intFilter(param, column string) filter {
	return filter{param: param, column: column, parse: func(v string) (any, bool) {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}}
}

// resource serves list, retrieve, create, replace, patch and delete for one
// model type.
type resource[T any] struct {
	s       *Server
	filters []filter
	search  []string
	order   string
	preload []string
}

func (r *resource[T]) repo() *store.Repo[T] {
	repo := store.NewRepo[T](r.s.deps.Store).WithSearch(r.search...)
	if r.order != "" {
		repo = repo.WithOrder(r.order)
	}
	return repo
}

// register mounts the handlers on g. Reads go through read, writes
// through write.
func (r *resource[T]) register(g *gin.RouterGroup, path string, read, write []gin.HandlerFunc) {
	g.GET(path+"/", chain(read, r.list)...)
	g.GET(path+"/:id/", chain(read, r.get)...)
	g.POST(path+"/", chain(write, r.create)...)
	g.PUT(path+"/:id/", chain(write, r.replace)...)
	g.PATCH(path+"/:id/", chain(write, r.patch)...)
	g.DELETE(path+"/:id/", chain(write, r.remove)...)
}

// chain returns a fresh slice so routes never share a backing array.
func chain(middleware []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	return append(append(out, middleware...), h)
}

func (r *resource[T]) list(c *gin.Context) {
	limit, offset := page(c)
	opts := store.ListOptions{
		Limit:   limit,
		Offset:  offset,
		Search:  c.Query("search"),
		Preload: r.preload,
		Filters: map[string]any{},
	}
	for _, f := range r.filters {
		raw, ok := c.GetQuery(f.param)
		if !ok {
			continue
		}
		if v, ok := f.parse(raw); ok {
			opts.Filters[f.column] = v
		}
	}

	items, err := r.repo().List(c.Request.Context(), opts)
	if err != nil {
		r.s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *resource[T]) get(c *gin.Context) {
	id, ok := r.s.idParam(c)
	if !ok {
		return
	}
	item, err := r.repo().Get(c.Request.Context(), id, r.preload...)
	if err != nil {
		r.s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *resource[T]) create(c *gin.Context) {
	item := new(T)
	if !r.s.bindJSON(c, item) {
		return
	}
	setID(item, 0)

	if err := r.repo().Create(c.Request.Context(), item); err != nil {
		r.s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// replace overwrites every writable field. Omitted fields take their zero
// values.
func (r *resource[T]) replace(c *gin.Context) {
	id, ok := r.s.idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	exists, err := r.repo().Exists(ctx, id)
	if err != nil {
		r.s.fail(c, err)
		return
	}
	if !exists {
		r.s.fail(c, store.ErrNotFound)
		return
	}

	item := new(T)
	if !r.s.bindJSON(c, item) {
		return
	}
	setID(item, id)

	if err := r.repo().Save(ctx, item); err != nil {
		r.s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// patch decodes the body over the stored record so omitted fields keep
// their values.
func (r *resource[T]) patch(c *gin.Context) {
	id, ok := r.s.idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	item, err := r.repo().Get(ctx, id)
	if err != nil {
		r.s.fail(c, err)
		return
	}
	if !r.s.bindJSON(c, item) {
		return
	}
	setID(item, id)

	if err := r.repo().Save(ctx, item); err != nil {
		r.s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *resource[T]) remove(c *gin.Context) {
	id, ok := r.s.idParam(c)
	if !ok {
		return
	}
	if err := r.repo().Delete(c.Request.Context(), id); err != nil {
		r.s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// setID writes the primary key of a model. Client supplied ids are never
// trusted.
func setID(item any, id int64) {
	v := reflect.ValueOf(item).Elem()
	if f := v.FieldByName("ID"); f.IsValid() && f.CanSet() && f.Kind() == reflect.Int64 {
		f.SetInt(id)
	}
}
