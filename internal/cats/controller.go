package cats

import (
	"net/http"
	"unicode/utf8"

	"github.com/gorilla/mux"

	caterrs "github.com/jdholdren/cattery/internal/errors"
	"github.com/jdholdren/cattery/internal/serverutil"
)

const (
	maxNameLength = 64
	maxAge        = 40

	defaultPageSize = 20
	maxPageSize     = 100
)

// Controller exposes the cats over HTTP.
type Controller struct {
	svc *Service
}

func NewController(svc *Service) Controller {
	return Controller{svc: svc}
}

func (c Controller) Register(r serverutil.ErrRouter) {
	r.HandleFuncE("/cats", c.postCat).Methods(http.MethodPost)
	r.HandleFuncE("/cats", c.getCats).Methods(http.MethodGet, http.MethodHead)
	r.HandleFuncE("/cats/{catID}", c.getCat).Methods(http.MethodGet, http.MethodHead)
	r.HandleFuncE("/cats/{catID}", c.deleteCat).Methods(http.MethodDelete)
}

type CreateCatReq struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Breed string `json:"breed"`
}

func (req CreateCatReq) Validate() error {
	var details []caterrs.Detail
	if req.Name == "" {
		details = append(details, caterrs.Detail{Field: "name", Error: "is required"})
	}
	if utf8.RuneCountInString(req.Name) > maxNameLength {
		details = append(details, caterrs.Detail{Field: "name", Error: "is too long"})
	}
	if req.Age < 0 || req.Age > maxAge {
		details = append(details, caterrs.Detail{Field: "age", Error: "must be between 0 and 40"})
	}

	if len(details) > 0 {
		return caterrs.E("invalid cat", http.StatusBadRequest, details)
	}
	return nil
}

func (c Controller) postCat(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[CreateCatReq](r.Body)
	if err != nil {
		return err
	}

	cat, err := c.svc.Create(r.Context(), Cat{
		Name:  body.Name,
		Age:   body.Age,
		Breed: body.Breed,
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusCreated, cat)
}

type CatsResp struct {
	Cats []Cat               `json:"cats"`
	Meta serverutil.PageMeta `json:"meta"`
}

func (c Controller) getCats(w http.ResponseWriter, r *http.Request) error {
	limit, offset := serverutil.Page(r, defaultPageSize, maxPageSize)

	cats, total, err := c.svc.FindAll(r.Context(), limit, offset)
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []Cat{}
	}

	return serverutil.WriteJSON(w, http.StatusOK, CatsResp{
		Cats: cats,
		Meta: serverutil.PageMeta{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	})
}

func (c Controller) getCat(w http.ResponseWriter, r *http.Request) error {
	cat, err := c.svc.FindOne(r.Context(), mux.Vars(r)["catID"])
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, cat)
}

func (c Controller) deleteCat(w http.ResponseWriter, r *http.Request) error {
	if err := c.svc.Remove(r.Context(), mux.Vars(r)["catID"]); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
