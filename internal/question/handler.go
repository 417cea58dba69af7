package question

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/saulo-duarte/mathbank-lambda/internal/pager"
)

const DefaultSampleSize = 5

type Handler struct {
	service QuestionService
}

func NewHandler(s QuestionService) *Handler {
	return &Handler{service: s}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		config.Error(w, http.StatusUnauthorized, "login_required", "log in to browse questions")
	case errors.Is(err, ErrModuleLocked), errors.Is(err, ErrYearLocked), errors.Is(err, ErrLevelLocked):
		config.Error(w, http.StatusForbidden, "upgrade_required", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrModuleNotFound):
		config.Error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		config.Error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func parseQuery(r *http.Request) (Query, error) {
	qs := r.URL.Query()
	q := Query{
		Criteria: Criteria{
			Year:       qs.Get("year"),
			Level:      qs.Get("level"),
			Module:     qs.Get("module"),
			Difficulty: qs.Get("difficulty"),
		},
	}

	var err error
	if q.Page, err = intParam(r, "page", 1); err != nil {
		return q, errors.New("page must be an integer")
	}
	if q.PageSize, err = intParam(r, "page_size", pager.DefaultPageSize); err != nil {
		return q, errors.New("page_size must be an integer")
	}
	return q, nil
}

func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	years, err := h.service.Years(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	levels, err := h.service.Levels(r.Context(), sess, chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	modules, err := h.service.Modules(r.Context(), sess, chi.URLParam(r, "year"), chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())
	sess, _ := auth.SessionFromContext(r.Context())

	q, err := parseQuery(r)
	if err != nil {
		config.Error(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	result, err := h.service.Browse(r.Context(), sess, q)
	if err != nil {
		log.WithError(err).Info("Browse rejected")
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, result)
}

func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())
	sess, _ := auth.SessionFromContext(r.Context())

	q, err := parseQuery(r)
	if err != nil {
		config.Error(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	n, err := intParam(r, "n", DefaultSampleSize)
	if err != nil {
		config.Error(w, http.StatusBadRequest, "invalid_query", "n must be an integer")
		return
	}

	result, err := h.service.Sample(r.Context(), sess, q, n)
	if err != nil {
		log.WithError(err).Info("Sample rejected")
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, result)
}

func (h *Handler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	config.JSON(w, http.StatusOK, map[string]interface{}{"warnings": h.service.Warnings(r.Context())})
}
