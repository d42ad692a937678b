package handler

import (
	"html/template"
	"log"
	"net/http"

	"github.com/trendifymart/api/internal/auth"
	"github.com/trendifymart/api/internal/middleware"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>TrendifyMart Login</title></head>
<body>
<h1>Sign in</h1>
<form id="login-form">
  <input type="email" name="email" placeholder="Email" required>
  <input type="password" name="password" placeholder="Password" required>
  <button type="submit">Sign in</button>
</form>
<script>
document.getElementById('login-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const form = new FormData(e.target);
  const res = await fetch('/api/auth/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({email: form.get('email'), password: form.get('password')}),
  });
  if (res.ok) {
    const params = new URLSearchParams(window.location.search);
    window.location.href = params.get('redirect') || '/';
  }
});
</script>
</body>
</html>
`))

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>TrendifyMart Admin</title></head>
<body>
<h1>Order dashboard</h1>
<p>Signed in as {{.UserID}}</p>
<ul id="events"></ul>
<script>
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws/admin/orders?token={{.Token}}');
ws.onmessage = (msg) => {
  const li = document.createElement('li');
  li.textContent = msg.data;
  document.getElementById('events').prepend(li);
};
</script>
</body>
</html>
`))

type dashboardData struct {
	UserID string
	Token  string
}

// PageHandler serves the minimal server-rendered admin pages. The login
// page is reachable without a session; the dashboard sits behind
// middleware.AdminPageGate.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Login handles GET /login and GET /admin/login.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPage.Execute(w, nil); err != nil {
		log.Printf("ERROR: render login page: %v", err)
	}
}

// Dashboard handles GET /admin/dashboard. The gate has already verified
// the admin session and put the claims on the context.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token := ""
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		token = c.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardPage.Execute(w, dashboardData{
		UserID: claims.UserID.String(),
		Token:  token,
	}); err != nil {
		log.Printf("ERROR: render dashboard page: %v", err)
	}
}
