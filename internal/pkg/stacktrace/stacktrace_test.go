package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/smsotp/internal/pkg/router.middlewareRecoverer.func1.1()
	/app/internal/pkg/router/middleware_recover.go:31 +0x65
panic({0x1, 0x2})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/smsotp/internal/smsotp/inbound.(*HTTPEndpoint).Token(...)
	/app/internal/smsotp/inbound/http_endpoint.go:88
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:31",
		"internal/smsotp/inbound/http_endpoint.go:88",
	}, got)
}

func TestInternalPaths_Empty(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/app/main.go:10\n")))
}
