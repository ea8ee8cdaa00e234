package ovh

import (
	"context"
	"regexp"
	"strings"
)

// AccessRule grants one HTTP method on an API path. A path ending with "/*"
// covers the whole subtree.
type AccessRule struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// NewAccessRule returns a rule with an upper-cased method.
func NewAccessRule(method, path string) AccessRule {
	return AccessRule{Method: strings.ToUpper(method), Path: path}
}

// CredentialRequest is the payload of POST /auth/credential.
type CredentialRequest struct {
	AccessRules []AccessRule `json:"accessRules"`
	// Redirection is where the user lands after validating the credential.
	Redirection string `json:"redirection,omitempty"`
}

type CredentialRequestResult struct {
	ValidationURL string `json:"validationUrl"`
	ConsumerKey   string `json:"consumerKey"`
	State         string `json:"state,omitempty"`
}

func (r *CredentialRequest) AddRule(method, path string) {
	r.AccessRules = append(r.AccessRules, NewAccessRule(method, path))
}

func (r *CredentialRequest) AddRules(methods []string, path string) {
	for _, m := range methods {
		r.AddRule(m, path)
	}
}

var recursiveSuffix = regexp.MustCompile(`/\*?$`)

// AddRecursiveRules grants methods on path and on everything below it. A
// trailing "/" or "/*" on path is ignored, so "/me", "/me/" and "/me/*" all
// produce the rules "/me" and "/me/*".
func (r *CredentialRequest) AddRecursiveRules(methods []string, path string) {
	path = recursiveSuffix.ReplaceAllString(path, "")
	r.AddRules(methods, path)
	r.AddRules(methods, path+"/*")
}

// RequestConsumerKey asks the API for a new consumer key. The key only becomes
// usable once the user has visited ValidationURL; the client's own consumer key
// is left unchanged.
func (c *Client) RequestConsumerKey(ctx context.Context, req *CredentialRequest) (*CredentialRequestResult, error) {
	if req == nil {
		return nil, newError(KindInvalidArgument, "credential request is required", nil)
	}
	var out CredentialRequestResult
	if err := c.Post(ctx, EndpointCredential, req, &out, WithoutAuth()); err != nil {
		return nil, err
	}
	return &out, nil
}
