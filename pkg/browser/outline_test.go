package browser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authPage = `<html>
<head>
  <title>Sign in</title>
  <script>window.firebase = {};</script>
  <style>#register-form { color: red; }</style>
</head>
<body>
  <h1>Welcome back</h1>
  <a href="#" id="toggle-form">Create an account</a>
  <form id="login-form">
    <input id="login-email" type="email" name="email">
    <input id="login-password" type="password">
    <button type="submit">Sign in</button>
  </form>
  <form id="register-form" style="display: none">
    <input id="register-email" type="email">
    <button type="submit">Register</button>
  </form>
  <div class="decor"><span>plain</span></div>
</body>
</html>`

func TestOutlineHTML(t *testing.T) {
	o, err := OutlineHTML(authPage, 0)
	require.NoError(t, err)

	assert.Equal(t, "Sign in", o.Title)
	assert.False(t, o.Truncated)
	assert.Equal(t, []string{
		`h1 "Welcome back"`,
		`a#toggle-form[href=#] "Create an account"`,
		`form#login-form`,
		`  input#login-email[type=email][name=email]`,
		`  input#login-password[type=password]`,
		`  button[type=submit] "Sign in"`,
		`form#register-form (hidden)`,
		`  input#register-email[type=email]`,
		`  button[type=submit] "Register"`,
	}, o.Lines)

	s := o.String()
	assert.True(t, strings.HasPrefix(s, "title: Sign in\n"))
	assert.NotContains(t, s, "firebase")
	assert.NotContains(t, s, "plain")
}

func TestOutlineHTML_Truncates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString(`<button type="button">x</button>`)
	}

	o, err := OutlineHTML(b.String(), 5)
	require.NoError(t, err)
	assert.Len(t, o.Lines, 5)
	assert.True(t, o.Truncated)
	assert.True(t, strings.HasSuffix(o.String(), "...\n"))
}

func TestOutlineHTML_LongText(t *testing.T) {
	o, err := OutlineHTML("<h1>"+strings.Repeat("a", 200)+"</h1>", 10)
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, `h1 "`+strings.Repeat("a", maxOutlineText)+`..."`, o.Lines[0])

	// The cut lands inside a multi-byte character
	o, err = OutlineHTML("<h1>"+strings.Repeat("a", 59)+"Đăng nhập vào hệ thống học tập</h1>", 10)
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.True(t, utf8.ValidString(o.Lines[0]))
	assert.Equal(t, `h1 "`+strings.Repeat("a", 59)+`Đ..."`, o.Lines[0])
}
