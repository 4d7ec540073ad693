package inbound

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/i18n"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/router"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

// SessionCookie carries the interactive auth session handle.
const SessionCookie = "SMS_OTP_SESSION"

const (
	msgOTPSent       = "OTP sent to your phone"
	msgOTPRequired   = "OTP verification required"
	msgOTPExpired    = "OTP has expired"
	msgOTPInvalid    = "Invalid OTP code"
	msgNoOTPSession  = "No OTP session found"
	msgSMSSendFailed = "Failed to send SMS code"
)

// view is what the shaper needs to know about the request.
type view struct {
	Channel entity.Channel
	Lang    string
	Realm   string
}

type challengeResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ExpiresIn int64  `json:"expires_in"`
	OTP       string `json:"otp,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Shaper maps a flow event and the caller's channel to a response: JSON for
// stateless clients, pages for browsers.
type Shaper struct {
	texts        *i18n.Translator
	pages        *pages
	successURL   string
	secureCookie bool
	sessionTTL   int
}

type ShaperConfig struct {
	Texts *i18n.Translator
	// SuccessURL receives the browser after an accepted code. Empty renders
	// a success page instead.
	SuccessURL   string
	SecureCookie bool
	// SessionTTLSeconds bounds the session cookie.
	SessionTTLSeconds int
}

func NewShaper(cfg ShaperConfig) (*Shaper, error) {
	if cfg.Texts == nil {
		return nil, errors.New("inbound: shaper needs a translator")
	}

	return &Shaper{
		texts:        cfg.Texts,
		pages:        newPages(),
		successURL:   cfg.SuccessURL,
		secureCookie: cfg.SecureCookie,
		sessionTTL:   cfg.SessionTTLSeconds,
	}, nil
}

func (s *Shaper) localizer(v view) i18n.Localizer {
	return s.texts.Localizer(v.Lang)
}

func (s *Shaper) page(v view, name pageName, status int, data pageData) router.Renderer {
	l := s.localizer(v)
	data.HTMLLang = htmlLang(v.Lang)
	if data.Title == "" {
		data.Title = l.T("otp_title")
	}

	return router.HTML{Status: status, Component: s.pages.component(name, l, data)}
}

// LoginForm renders the credential step.
func (s *Shaper) LoginForm(v view, status int, username, errMsg string) router.Renderer {
	return s.page(v, pageLogin, status, pageData{
		Title:    s.localizer(v).TData("login_title", map[string]any{"Realm": v.Realm}),
		Action:   loginPath(v.Realm),
		Username: username,
		Error:    errMsg,
	})
}

// Issued reports a challenge that was created and sent. handle is set on the
// interactive channel when a new auth session was opened.
func (s *Shaper) Issued(v view, out *usecase.IssueOutput, handle string) router.Renderer {
	if v.Channel == entity.ChannelNonInteractive {
		resp := challengeResponse{
			Status:    "otp_required",
			Message:   msgOTPSent,
			ExpiresIn: int64(out.ExpiresIn.Seconds()),
		}
		if out.Simulated {
			resp.Message = msgOTPRequired
			resp.OTP = out.Challenge.Code
		}
		return router.JSON{Status: http.StatusOK, Body: resp}
	}

	data := pageData{Action: otpPath(v.Realm)}
	if out.Simulated {
		data.Notice = s.localizer(v).TData("otp_simulation", map[string]any{"Code": out.Challenge.Code})
	}
	form := s.page(v, pageOTP, http.StatusOK, data)
	if handle == "" {
		return form
	}

	return router.WithCookies{Renderer: form, Cookies: []*http.Cookie{s.sessionCookie(v, handle)}}
}

func (s *Shaper) otpForm(v view, status int, errMsg string) router.Renderer {
	return s.page(v, pageOTP, status, pageData{Action: otpPath(v.Realm), Error: errMsg})
}

// Rejected reports a submitted code that was not accepted. retry keeps the
// interactive form open for another attempt.
func (s *Shaper) Rejected(v view, outcome entity.Outcome, retry bool) router.Renderer {
	if v.Channel == entity.ChannelNonInteractive {
		switch outcome {
		case entity.OutcomeExpired:
			return router.JSON{Status: http.StatusBadRequest, Body: errorResponse{Error: "otp_expired", Message: msgOTPExpired}}
		case entity.OutcomeMismatch:
			return router.JSON{Status: http.StatusUnauthorized, Body: errorResponse{Error: "invalid_otp", Message: msgOTPInvalid}}
		default:
			return router.JSON{Status: http.StatusBadRequest, Body: errorResponse{Error: "invalid_request", Message: msgNoOTPSession}}
		}
	}

	l := s.localizer(v)

	if outcome == entity.OutcomeMismatch && retry {
		return s.otpForm(v, http.StatusOK, l.T("otp_invalid"))
	}

	var r router.Renderer
	switch outcome {
	case entity.OutcomeExpired:
		r = s.message(v, http.StatusBadRequest, l.T("otp_expired"), "")
	case entity.OutcomeMismatch:
		r = s.message(v, http.StatusOK, "", l.T("otp_factor_failed"))
	default:
		r = s.message(v, http.StatusBadRequest, l.T("otp_no_session"), "")
	}

	return router.WithCookies{Renderer: r, Cookies: []*http.Cookie{s.clearCookie(v)}}
}

// Accepted completes the flow with an access token.
func (s *Shaper) Accepted(v view, token *jwt.Token, username string) router.Renderer {
	resp := tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}

	if v.Channel == entity.ChannelNonInteractive {
		return router.JSON{Status: http.StatusOK, Body: resp}
	}

	cookies := []*http.Cookie{s.clearCookie(v)}

	if s.successURL != "" {
		fragment := url.Values{}
		fragment.Set("access_token", resp.AccessToken)
		fragment.Set("token_type", resp.TokenType)
		fragment.Set("expires_in", strconv.FormatInt(resp.ExpiresIn, 10))

		return router.WithCookies{
			Renderer: router.Redirect{URL: s.successURL + "#" + fragment.Encode()},
			Cookies:  cookies,
		}
	}

	msg := s.localizer(v).TData("signed_in", map[string]any{"Username": username})
	return router.WithCookies{Renderer: s.message(v, http.StatusOK, "", msg), Cookies: cookies}
}

// Error shapes a failed step. Non-interactive errors other than a transport
// failure go back to the router's error writer unchanged.
func (s *Shaper) Error(ctx context.Context, v view, err error) (any, error) {
	var terr *entity.TransportError
	isTransport := errors.As(err, &terr)

	if v.Channel == entity.ChannelNonInteractive {
		if isTransport {
			return router.JSON{
				Status: http.StatusInternalServerError,
				Body:   errorResponse{Error: "sms_send_failed", Message: msgSMSSendFailed},
			}, nil
		}
		return nil, err
	}

	l := s.localizer(v)

	switch {
	case isTransport:
		return s.message(v, http.StatusInternalServerError, l.T("sms_send_failed"), ""), nil
	case errors.Is(err, entity.ErrInvalidCredentials), errors.Is(err, entity.ErrAccountDisabled):
		return s.LoginForm(v, http.StatusUnauthorized, "", l.T("invalid_credentials")), nil
	case errors.Is(err, entity.ErrNotConfigured):
		return s.message(v, http.StatusBadRequest, l.T("not_configured"), ""), nil
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Type() == goerror.TypeValidation {
		return s.LoginForm(v, http.StatusBadRequest, "", gerr.Msg()), nil
	}

	slog.ErrorContext(ctx, "interactive flow failed", "realm", v.Realm, "error", err)
	return s.message(v, http.StatusInternalServerError, l.T("server_error"), ""), nil
}

func (s *Shaper) message(v view, status int, errMsg, msg string) router.Renderer {
	l := s.localizer(v)

	data := pageData{Error: errMsg, Message: msg, Action: loginPath(v.Realm)}
	if errMsg != "" {
		data.Title = l.T("error_title")
	}

	return s.page(v, pageMessage, status, data)
}

func (s *Shaper) sessionCookie(v view, handle string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    handle,
		Path:     realmPath(v.Realm),
		MaxAge:   s.sessionTTL,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Shaper) clearCookie(v view) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Path:     realmPath(v.Realm),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func realmPath(realm string) string {
	return "/realms/" + url.PathEscape(realm)
}

func loginPath(realm string) string {
	return realmPath(realm) + "/login"
}

func otpPath(realm string) string {
	return realmPath(realm) + "/login/otp"
}
