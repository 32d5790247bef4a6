package models

import (
	"koppeltaal-service/internal/pkg/constvars"
	"net/http"
)

// Credential authenticates calls to the koppeltaal server: basic auth for
// direct application calls, bearer tokens for delegated ones.
type Credential struct {
	Scheme   string
	Username string
	Password string
	Token    string
}

func BasicCredential(username, password string) Credential {
	return Credential{Scheme: constvars.AuthSchemeBasic, Username: username, Password: password}
}

func BearerCredential(token string) Credential {
	return Credential{Scheme: constvars.AuthSchemeBearer, Token: token}
}

func (c Credential) Apply(req *http.Request) {
	switch c.Scheme {
	case constvars.AuthSchemeBasic:
		req.SetBasicAuth(c.Username, c.Password)
	case constvars.AuthSchemeBearer:
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthSchemeBearer+" "+c.Token)
	}
}

// Principal names the credential holder for logs and errors.
func (c Credential) Principal() string {
	if c.Scheme == constvars.AuthSchemeBasic {
		return c.Username
	}
	return c.Scheme
}
