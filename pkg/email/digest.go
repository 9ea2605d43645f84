package email

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/notifyq/pkg/notification"
)

// DigestParams feed the digest layout for one recipient.
type DigestParams struct {
	Heading string
	Items   []notification.CreateNotification
}

// DigestComponent produces the HTML body for one user's digest email.
// Applications supply branded layouts via WithDigestComponent; Digest
// is the default.
type DigestComponent func(DigestParams) templ.Component

// Digest is the default digest layout: a heading followed by one block
// per notification with an optional action link. All dynamic values are
// escaped; action URLs go through templ's URL sanitizer.
func Digest(params DigestParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
		sb.WriteString("<h2>" + templ.EscapeString(params.Heading) + "</h2>\n")
		for _, item := range params.Items {
			sb.WriteString("<div style=\"margin-bottom:16px\">\n")
			sb.WriteString("<h3>" + templ.EscapeString(item.Title) + "</h3>\n")
			sb.WriteString("<p>" + templ.EscapeString(item.Content) + "</p>\n")
			if item.ActionURL != "" {
				label := item.ActionText
				if label == "" {
					label = "View"
				}
				sb.WriteString("<p><a href=\"" + templ.EscapeString(string(templ.URL(item.ActionURL))) + "\">" +
					templ.EscapeString(label) + "</a></p>\n")
			}
			sb.WriteString("</div>\n")
		}
		sb.WriteString("</body>\n</html>\n")

		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// Render renders a templ component to a string.
func Render(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
