package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/catalog"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/pkg/dsl"
	"github.com/rushteam/gamerec/pkg/validate"
)

const (
	msgNoUser      = "No user provided"
	msgInvalidUser = "Invalid user provided"

	codeInvalidInput  = core.ErrorCodeInvalidInput
	codeInvalidFilter = "INVALID_FILTER"
	codeUpstream      = "UPSTREAM_ERROR"
)

// recommendRequest 是 /recommend 的请求体。
type recommendRequest struct {
	User   *userPayload `json:"user" validate:"required"`
	Limit  int          `json:"limit" validate:"omitempty,min=1"`
	Filter string       `json:"filter"`
}

type userPayload struct {
	ID userID `json:"id" validate:"required"`

	// Liked 元素可以是游戏 id 或游戏对象，只使用 id。可以为空数组，但必须存在。
	Liked []*core.Game `json:"liked" validate:"required"`
}

// userID 兼容字符串和数字两种形态。
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = userID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number")
	}
	*u = userID(n.String())
	return nil
}

// requestError 是请求解析阶段的 400 错误。
type requestError struct {
	code    string
	message string
	fields  []validate.FieldError
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string, fields ...validate.FieldError) *requestError {
	return &requestError{code: code, message: message, fields: fields}
}

func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello, World!")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req, prg, reqErr := s.decodeRecommend(w, r)
	if reqErr != nil {
		writeError(w, http.StatusBadRequest, reqErr.code, reqErr.message, reqErr.fields)
		return
	}

	uid := string(req.User.ID)
	ctx := logging.ContextWithUserID(r.Context(), uid)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	pool, err := s.provider.Candidates(ctx)
	if err != nil {
		status, code := catalogStatus(err)
		logging.Ctx(ctx).Error().Err(err).Str("source", s.provider.Name()).Msg("fetch candidate pool failed")
		writeError(w, status, code, "failed to fetch candidate games", nil)
		return
	}

	rctx := core.NewRecommendContext(uid, req.User.Liked)
	if req.Limit > 0 {
		rctx.Params["limit"] = req.Limit
	}
	if prg != nil {
		rctx.Params[filter.ParamFilter] = prg
	}

	games, err := s.engine.Recommend(ctx, rctx, pool)
	if err != nil {
		if de := core.GetDomainError(err); de != nil && (core.IsEmptyLikedSet(err) || core.IsEmptyCandidatePool(err)) {
			writeError(w, http.StatusUnprocessableEntity, de.Code, de.Message, nil)
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("recommend failed")
		writeError(w, http.StatusInternalServerError, core.ErrorCodeInternalError, "internal error", nil)
		return
	}

	logging.Ctx(ctx).Debug().
		Int("liked", len(rctx.LikedIDs)).
		Int("pool_size", len(pool)).
		Int("results", len(games)).
		Msg("recommended")
	writeJSON(w, http.StatusOK, games)
}

// decodeRecommend 解析并校验请求体，filter 非空时预编译。
func (s *Server) decodeRecommend(w http.ResponseWriter, r *http.Request) (*recommendRequest, *dsl.Program, *requestError) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, badRequest(codeInvalidInput, "request body too large")
		}
		return nil, nil, badRequest(codeInvalidInput, "failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, badRequest(codeInvalidInput, msgNoUser)
	}

	var envelope struct {
		User   json.RawMessage `json:"user"`
		Limit  json.RawMessage `json:"limit"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, badRequest(codeInvalidInput, "invalid JSON body")
	}
	user := bytes.TrimSpace(envelope.User)
	if len(user) == 0 || bytes.Equal(user, []byte("null")) {
		return nil, nil, badRequest(codeInvalidInput, msgNoUser)
	}

	req := &recommendRequest{User: &userPayload{}}
	if err := json.Unmarshal(user, req.User); err != nil {
		return nil, nil, badRequest(codeInvalidInput, msgInvalidUser)
	}
	if len(envelope.Limit) > 0 && !bytes.Equal(envelope.Limit, []byte("null")) {
		n, err := strconv.Atoi(string(bytes.TrimSpace(envelope.Limit)))
		if err != nil {
			return nil, nil, badRequest(codeInvalidInput, "limit must be an integer")
		}
		req.Limit = n
	}
	if len(envelope.Filter) > 0 && !bytes.Equal(envelope.Filter, []byte("null")) {
		if err := json.Unmarshal(envelope.Filter, &req.Filter); err != nil {
			return nil, nil, badRequest(codeInvalidInput, "filter must be a string")
		}
	}

	if err := validate.Struct(req); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return nil, nil, badRequest(codeInvalidInput, err.Error())
		}
		for _, fe := range verrs {
			if strings.HasPrefix(fe.Field, "user") {
				return nil, nil, badRequest(codeInvalidInput, msgInvalidUser, verrs...)
			}
		}
		return nil, nil, badRequest(codeInvalidInput, verrs.Error(), verrs...)
	}
	if req.Limit > s.cfg.TopK {
		fe := validate.FieldError{
			Field:   "limit",
			Tag:     "max",
			Param:   strconv.Itoa(s.cfg.TopK),
			Message: fmt.Sprintf("limit must be at most %d", s.cfg.TopK),
		}
		return nil, nil, badRequest(codeInvalidInput, fe.Message, fe)
	}

	filterExpr := strings.TrimSpace(req.Filter)
	if filterExpr == "" {
		return req, nil, nil
	}
	if s.cfg.MaxFilterLength > 0 && len(filterExpr) > s.cfg.MaxFilterLength {
		return nil, nil, badRequest(codeInvalidFilter, fmt.Sprintf("filter must be at most %d characters", s.cfg.MaxFilterLength))
	}
	prg, err := dsl.Compile(filterExpr)
	if err != nil {
		return nil, nil, badRequest(codeInvalidFilter, err.Error())
	}
	return req, prg, nil
}

// catalogStatus 把候选池拉取错误映射为 HTTP 状态：熔断打开 503，其他上游失败 502。
func catalogStatus(err error) (int, string) {
	switch {
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable, core.ErrorCodeUnavailable
	case errors.Is(err, catalog.ErrUpstream):
		return http.StatusBadGateway, codeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeUpstream
	default:
		return http.StatusBadGateway, codeUpstream
	}
}
