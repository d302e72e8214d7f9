package routes

import "testing"

func TestClassify(t *testing.T) {
	cls := NewClassifier()

	cases := []struct {
		name   string
		method string
		path   string
		want   Access
	}{
		{"login", "POST", "/auth/login", Public},
		{"signup", "POST", "/auth/signup", Public},
		{"health", "GET", "/health", Public},
		{"docs", "GET", "/docs", Public},
		{"openapi", "GET", "/openapi.json", Public},
		{"chat match", "POST", "/chat/match", Public},
		{"chat session lookup", "GET", "/chat/sessions/abc", Public},
		{"venue browse", "GET", "/venues", Public},
		{"venue detail browse", "GET", "/venues/42", Public},
		{"venue create", "POST", "/venues", Protected},
		{"venue delete", "DELETE", "/venues/42", Protected},
		{"preflight", "OPTIONS", "/bookings/1", Public},
		{"admin delegated downstream", "POST", "/admin/users", Public},
		{"user profile", "GET", "/users/me", Protected},
		{"find match", "POST", "/matches/find", Protected},
		{"booking create", "POST", "/bookings/create", Protected},
		{"chat websocket", "GET", "/chat/ws/s1/u1", Protected},
	}
	for _, tc := range cases {
		if got := cls.Classify(tc.method, tc.path); got != tc.want {
			t.Errorf("%s: Classify(%s %s) = %v, want %v", tc.name, tc.method, tc.path, got, tc.want)
		}
	}
}
