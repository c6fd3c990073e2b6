package endpoint

import (
	"net/url"
	"strings"

	"github.com/vaultkit/client-go/internal/apierrors"
)

// Path renders a path template. Each {name} placeholder is replaced by
// params[name]; values may contain "/" and each of their segments is
// escaped separately. A missing or empty value is a ValidationError naming
// the placeholder.
//
//	Path("kv1 read", "{mount}/{path}", map[string]string{"mount": "kv", "path": "app/db"})
//	// "kv/app/db"
func Path(request, template string, params map[string]string) (string, error) {
	var (
		b       strings.Builder
		missing []string
	)

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", &apierrors.ValidationError{
				Request: request,
				Message: "unterminated placeholder in path template " + template,
			}
		}
		end += open

		b.WriteString(rest[:open])
		name := rest[open+1 : end]
		value := strings.Trim(params[name], "/")
		if value == "" {
			missing = append(missing, name)
		} else {
			escaped, ok := escapeSegments(value)
			if !ok {
				return "", &apierrors.ValidationError{
					Request: request,
					Fields:  []string{name},
					Message: "path segments may not be empty, \".\" or \"..\"",
				}
			}
			b.WriteString(escaped)
		}
		rest = rest[end+1:]
	}

	if len(missing) > 0 {
		return "", &apierrors.ValidationError{Request: request, Fields: missing}
	}
	return b.String(), nil
}

func escapeSegments(value string) (string, bool) {
	segments := strings.Split(value, "/")
	for i, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/"), true
}
