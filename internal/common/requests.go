package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// MakeRequestFromBuilder dispatches a prepared resty request with the given
// verb. Unknown verbs fail before anything is sent.
func MakeRequestFromBuilder(restBuilder *resty.Request, method string, finalUrl string) (*resty.Response, error) {

	switch strings.ToUpper(method) {
	case http.MethodGet:
		return restBuilder.Get(finalUrl)
	case http.MethodPost:
		return restBuilder.Post(finalUrl)
	case http.MethodPut:
		return restBuilder.Put(finalUrl)
	case http.MethodPatch:
		return restBuilder.Patch(finalUrl)
	case http.MethodDelete:
		return restBuilder.Delete(finalUrl)
	case http.MethodHead:
		return restBuilder.Head(finalUrl)
	case http.MethodOptions:
		return restBuilder.Options(finalUrl)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

}

// MethodAllowsBody reports whether a JSON body should be attached for method.
func MethodAllowsBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
