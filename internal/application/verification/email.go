package verification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/go-api-accounts/internal/domain"
)

const subject = "Verify Your Email"

var htmlBody = template.Must(template.New("verify").Parse(
	`<p>Please verify your email address by clicking the link below:</p>` +
		`<p><a href="{{.Link}}">Verify Email</a></p>` +
		`<p>This link will expire in {{.Window}}.</p>`))

func buildEmail(to, link string, window time.Duration) (domain.Email, error) {
	data := struct {
		Link   string
		Window string
	}{link, humanize(window)}

	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, data); err != nil {
		return domain.Email{}, fmt.Errorf("render verification email: %w", err)
	}
	return domain.Email{
		To:      to,
		Subject: subject,
		Text: fmt.Sprintf("Please verify your email address by clicking the following link: %s\n"+
			"This link will expire in %s.", link, data.Window),
		HTML: buf.String(),
	}, nil
}

// humanize renders whole minutes and hours in words and falls back to Go notation.
func humanize(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	default:
		return d.String()
	}
}
