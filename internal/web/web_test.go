package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	tmpl := Templates()

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "login.html", map[string]interface{}{"DashboardPrefix": "/dashboard"}))
	assert.Contains(t, buf.String(), "/api/v1/auth/login")

	buf.Reset()
	data := map[string]interface{}{
		"User": map[string]string{"Name": "Ana <Cruz>", "Role": "ADMIN"},
		"Page": "due",
	}
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "dashboard.html", data))
	assert.Contains(t, buf.String(), "Ana &lt;Cruz&gt; (ADMIN)")
	assert.Contains(t, buf.String(), `data-page="due"`)
}
