package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const resetSubject = "Password reset"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body>
<h1>Password reset</h1>
<p>Follow <a href="{{.Link}}">this link</a> to choose a new password. The link expires in {{.TTL}}.</p>
<p>If you did not request a password reset, ignore this message.</p>
</body>
</html>`))

// ResetLink joins the confirmation page base URL and the token
func ResetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/" + token
}

// RenderResetEmail builds the password reset message for a recipient
func RenderResetEmail(to, baseURL, token, ttl string) (Message, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Link string
		TTL  string
	}{Link: ResetLink(baseURL, token), TTL: ttl})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	text, err := PlainText(buf.String())
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: resetSubject,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

// PlainText derives a plain-text alternative from an HTML body.
// Links keep their target in parentheses; block elements become paragraphs.
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse email html: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		a.SetText(fmt.Sprintf("%s (%s)", strings.TrimSpace(a.Text()), href))
	})

	var paragraphs []string
	doc.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		if line := strings.Join(strings.Fields(s.Text()), " "); line != "" {
			paragraphs = append(paragraphs, line)
		}
	})
	return strings.Join(paragraphs, "\n\n"), nil
}
