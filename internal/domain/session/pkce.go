package session

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// CodeChallengeFromVerifier computes the PKCE S256 code challenge for a verifier.
func CodeChallengeFromVerifier(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// NewSignInState returns an anti-forgery state plus a PKCE verifier and its S256 challenge.
func NewSignInState() (state string, codeVerifier string, codeChallenge string, err error) {
	state, err = randomString(32)
	if err != nil {
		return "", "", "", err
	}
	codeVerifier = oauth2.GenerateVerifier()
	return state, codeVerifier, CodeChallengeFromVerifier(codeVerifier), nil
}

func randomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
