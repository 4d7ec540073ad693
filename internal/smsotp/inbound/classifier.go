package inbound

import (
	"strings"

	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

// tokenPathMarker identifies the token exchange endpoint.
const tokenPathMarker = "/token"

// ClassifyChannel decides from request metadata alone whether the caller is
// a stateless client or a browser.
func ClassifyChannel(path, accept string) entity.Channel {
	if strings.Contains(path, tokenPathMarker) {
		return entity.ChannelNonInteractive
	}

	accept = strings.ToLower(accept)
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return entity.ChannelNonInteractive
	}

	return entity.ChannelInteractive
}
