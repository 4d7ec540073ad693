package inbound

import (
	"strings"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/router"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

// HTTPEndpoint exposes the two-factor login over both channels.
type HTTPEndpoint struct {
	uc     uc
	shaper *Shaper
}

func (h *HTTPEndpoint) view(r *router.Request, channel entity.Channel) view {
	return view{
		Channel: channel,
		Lang:    r.Header.Get("Accept-Language"),
		Realm:   strings.ToLower(r.GetParam("realm")),
	}
}

// Token is the stateless password grant. Without otp it issues a challenge;
// with otp it checks the code and returns an access token.
func (h *HTTPEndpoint) Token(r *router.Request) (any, error) {
	v := h.view(r, entity.ChannelNonInteractive)

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if r.FormValue(fieldGrantType) != grantTypePassword {
		return nil, goerror.WithReason(goerror.NewInvalidFormat("Unsupported grant type"), "unsupported_grant_type")
	}

	return h.token(r, v)
}

func (h *HTTPEndpoint) token(r *router.Request, v view) (any, error) {
	out, err := h.uc.Token(r.Context(), usecase.TokenInput{
		Realm:    v.Realm,
		Username: r.FormValue(fieldUsername),
		Password: r.Request.FormValue(fieldPassword),
		OTP:      r.FormValue(fieldOTP),
		HasOTP:   r.HasForm(fieldOTP),
		Lang:     v.Lang,
	})
	if err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	switch {
	case out.Issued != nil:
		return h.shaper.Issued(v, out.Issued, ""), nil
	case out.Token != nil:
		return h.shaper.Accepted(v, out.Token, r.FormValue(fieldUsername)), nil
	default:
		return h.shaper.Rejected(v, out.Outcome, false), nil
	}
}

func (h *HTTPEndpoint) LoginForm(r *router.Request) (any, error) {
	v := h.view(r, entity.ChannelInteractive)
	return h.shaper.LoginForm(v, 0, "", ""), nil
}

// Login is the browser credential step. It opens an auth session and shows
// the code form.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	v := h.view(r, entity.ChannelInteractive)

	if err := r.ParseForm(); err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	return h.login(r, v)
}

func (h *HTTPEndpoint) login(r *router.Request, v view) (any, error) {
	username := r.FormValue(fieldUsername)

	out, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Realm:    v.Realm,
		Username: username,
		Password: r.Request.FormValue(fieldPassword),
		Lang:     v.Lang,
	})
	if err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	if out.Token != nil {
		return h.shaper.Accepted(v, out.Token, username), nil
	}

	return h.shaper.Issued(v, out.Issued, out.Session.Handle), nil
}

// SubmitCode is the browser code step.
func (h *HTTPEndpoint) SubmitCode(r *router.Request) (any, error) {
	v := h.view(r, entity.ChannelInteractive)

	if err := r.ParseForm(); err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	return h.submitCode(r, v)
}

func (h *HTTPEndpoint) submitCode(r *router.Request, v view) (any, error) {
	code := r.FormValue(fieldCode)
	if !r.HasForm(fieldCode) {
		code = r.FormValue(fieldOTP)
	}

	out, err := h.uc.SubmitCode(r.Context(), usecase.SubmitCodeInput{
		Realm:         v.Realm,
		SessionHandle: r.CookieValue(SessionCookie),
		Code:          code,
	})
	if err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	if out.Outcome == entity.OutcomeAccepted {
		return h.shaper.Accepted(v, out.Token, out.Session.Username), nil
	}

	return h.shaper.Rejected(v, out.Outcome, out.Retry), nil
}

// Authenticate serves callers that did not pick an endpoint for their
// channel. The channel is inferred from the path and Accept header.
func (h *HTTPEndpoint) Authenticate(r *router.Request) (any, error) {
	v := h.view(r, ClassifyChannel(r.URL.Path, r.Header.Get("Accept")))

	if err := r.ParseForm(); err != nil {
		return h.shaper.Error(r.Context(), v, err)
	}

	if v.Channel == entity.ChannelNonInteractive {
		return h.token(r, v)
	}

	if (r.HasForm(fieldCode) || r.HasForm(fieldOTP)) && r.CookieValue(SessionCookie) != "" {
		return h.submitCode(r, v)
	}

	return h.login(r, v)
}

// UserInfo returns the claims of the bearer token.
func (h *HTTPEndpoint) UserInfo(r *router.Request) (any, error) {
	claims := jwt.GetAuth(r.Context())
	if claims == nil || !strings.EqualFold(claims.Realm, r.GetParam("realm")) {
		return nil, goerror.WithReason(goerror.NewBusiness("Token was not issued for this realm", goerror.CodeUnauthorized), "invalid_token")
	}

	amr := claims.AMR
	if amr == nil {
		amr = []string{}
	}

	return UserInfoResponse{
		Sub:               claims.Subject,
		PreferredUsername: claims.PreferredUsername,
		Realm:             claims.Realm,
		AMR:               amr,
	}, nil
}
