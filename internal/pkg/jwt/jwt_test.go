package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hsConfig(secret string, ttl time.Duration) Config {
	return Config{
		Secret:   secret,
		Issuer:   "isp-billing",
		Audience: "isp-billing-admin",
		TTL:      ttl,
	}
}

var admin = Subject{ID: 7, Email: "admin@isp.local", Name: "Admin", Role: "admin"}

func TestHS256RoundTrip(t *testing.T) {
	m, err := LoadAndBuild(hsConfig("s3cret", 24*time.Hour))
	require.NoError(t, err)

	issued, err := m.Generator.Generate(admin)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := m.Verifier.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, admin.Name, claims.Name)
	assert.Equal(t, admin.Role, claims.Role)
	assert.Equal(t, issued.JTI, claims.ID)
}

func TestVerifyRejects(t *testing.T) {
	good, err := LoadAndBuild(hsConfig("s3cret", time.Hour))
	require.NoError(t, err)
	issued, err := good.Generator.Generate(admin)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired, err := LoadAndBuild(hsConfig("s3cret", -time.Minute))
		require.NoError(t, err)
		tok, err := expired.Generator.Generate(admin)
		require.NoError(t, err)
		_, err = good.Verifier.Verify(tok.Token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := LoadAndBuild(hsConfig("other", time.Hour))
		require.NoError(t, err)
		_, err = other.Verifier.Verify(issued.Token)
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := good.Verifier.Verify("not-a-token")
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(issued.Token, ".")
		require.Len(t, parts, 3)
		parts[1] = parts[1][:len(parts[1])-2] + "xx"
		_, err := good.Verifier.Verify(strings.Join(parts, "."))
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := hsConfig("s3cret", time.Hour)
		cfg.Issuer = "someone-else"
		m, err := LoadAndBuild(cfg)
		require.NoError(t, err)
		_, err = m.Verifier.Verify(issued.Token)
		assert.Error(t, err)
	})
}

func TestLoadAndBuildRequiresKeyMaterial(t *testing.T) {
	_, err := LoadAndBuild(hsConfig("", time.Hour))
	assert.Error(t, err)
}

func TestRS256FromPEMFiles(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600))

	cfg := hsConfig("", time.Hour)
	cfg.PrivPath, cfg.PubPath, cfg.KID = privPath, pubPath, "k1"
	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	issued, err := m.Generator.Generate(admin)
	require.NoError(t, err)
	claims, err := m.Verifier.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, claims.Email)

	// An HS256 token signed with the public key bytes must not pass as RS256.
	hs, err := LoadAndBuild(hsConfig(string(pubDER), time.Hour))
	require.NoError(t, err)
	forged, err := hs.Generator.Generate(admin)
	require.NoError(t, err)
	_, err = m.Verifier.Verify(forged.Token)
	assert.Error(t, err)
}

func TestLoadRejectsGarbagePEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, err := LoadRSAPrivateKeyFromPEM(path)
	assert.Error(t, err)
	_, err = LoadRSAPublicKeyFromPEM(path)
	assert.Error(t, err)
}
