package inbound

import (
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, shaper *Shaper, verifier jwt.JWT) {
	end := &HTTPEndpoint{uc: uc, shaper: shaper}

	r.POST("/realms/:realm/protocol/openid-connect/token", end.Token)
	r.GET("/realms/:realm/protocol/openid-connect/userinfo", end.UserInfo, router.Authenticated(verifier))

	r.GET("/realms/:realm/login", end.LoginForm)
	r.POST("/realms/:realm/login", end.Login)
	r.POST("/realms/:realm/login/otp", end.SubmitCode)

	r.POST("/realms/:realm/authenticate", end.Authenticate)
}
