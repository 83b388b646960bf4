package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair writes a self-signed loopback certificate to dir.
func writeKeyPair(t *testing.T, dir string) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "authkeeper.test"},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600))

	return certFile, keyFile
}

// serveHandshakes completes the TLS handshake for every accepted connection.
func serveHandshakes(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			_ = c.(*tls.Conn).Handshake()
		}(conn)
	}
}

func TestNewSecurityLayer(t *testing.T) {
	tl, ok := NewSecurityLayer(true, "cert.pem", "key.pem").(*TLSListener)
	require.True(t, ok)
	assert.Equal(t, "cert.pem", tl.certFileName)
	assert.Equal(t, "key.pem", tl.privateKeyFileName)

	_, ok = NewSecurityLayer(false, "cert.pem", "key.pem").(*PlainListener)
	assert.True(t, ok)
}

func TestTLSListener_Listen(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, t.TempDir())

	ln, err := NewTLSListener(certFile, keyFile).Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go serveHandshakes(ln)

	t.Run("tls 1.2 accepted", func(t *testing.T) {
		conn, err := tls.Dial("tcp", ln.Addr().String(), &tls.Config{
			InsecureSkipVerify: true,
			MaxVersion:         tls.VersionTLS12,
		})
		require.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, uint16(tls.VersionTLS12), conn.ConnectionState().Version)
	})

	t.Run("tls 1.1 rejected", func(t *testing.T) {
		_, err := tls.Dial("tcp", ln.Addr().String(), &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
			MaxVersion:         tls.VersionTLS11,
		})
		assert.Error(t, err)
	})
}

func TestTLSListener_Listen_Errors(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, t.TempDir())

	tests := []struct {
		name     string
		listener *TLSListener
		addr     string
		wantMsg  string
	}{
		{
			name:     "missing key pair",
			listener: NewTLSListener("missing.pem", "missing-key.pem"),
			addr:     "127.0.0.1:0",
			wantMsg:  "failed to load TLS certificate",
		},
		{
			name:     "bad address",
			listener: NewTLSListener(certFile, keyFile),
			addr:     "not-an-address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.listener.Listen("tcp", tt.addr)
			require.Error(t, err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestPlainListener_Listen(t *testing.T) {
	ln, err := NewPlainListener().Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, ok := ln.(*net.TCPListener)
	assert.True(t, ok)

	_, err = NewPlainListener().Listen("tcp", "not-an-address")
	assert.Error(t, err)
}
