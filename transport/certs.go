package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/maelstorm-web/maelstorm/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

// TLSConfig chooses the certificate source: the explicit pair if set, self-signed
// certificate for local addresses, or ACME otherwise.
func TLSConfig(cfg config.TLS, log *zap.Logger) (*tls.Config, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cache := cfg.CacheDir
	if len(cache) == 0 {
		cache = cacheDir()
	}

	switch {
	case len(cfg.Cert) > 0:
		return pairConfig(cfg.Cert, cfg.Key)
	case isLocalhost(cfg.Addr):
		cert, key, err := generateSelfSignedCert(cache)
		if err != nil {
			return nil, fmt.Errorf("generate self-signed certificate: %w", err)
		}

		log.Info("using self-signed certificate", zap.String("cert", cert))

		return pairConfig(cert, key)
	default:
		return autoConfig(cfg.AutoDomains, cache, log), nil
	}
}

func pairConfig(cert, key string) (*tls.Config, error) {
	certificate, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func autoConfig(domains []string, cache string, log *zap.Logger) *tls.Config {
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
	}

	if len(domains) > 0 {
		m.HostPolicy = autocert.HostWhitelist(domains...)
	}

	if err := mkdirIfNotExists(cache); err != nil {
		log.Warn("auto TLS: not using a cache", zap.Error(err))
	} else {
		m.Cache = autocert.DirCache(cache)
	}

	return m.TLSConfig()
}

func isLocalhost(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	switch host {
	case "", "localhost":
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

func cacheDir() string {
	const base = "maelstorm-certs"

	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), base)
	}

	return filepath.Join(dir, base)
}

func generateSelfSignedCert(cache string) (cert, key string, err error) {
	var (
		certFilename = filepath.Join(cache, "localhost.crt")
		keyFilename  = filepath.Join(cache, "localhost.key")
	)

	if fileExists(certFilename) && fileExists(keyFilename) {
		return certFilename, keyFilename, nil
	}

	if err := mkdirIfNotExists(cache); err != nil {
		return "", "", err
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Localhost"}},
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return "", "", err
	}

	if err = writePEM(certFilename, "CERTIFICATE", certDER); err != nil {
		return "", "", err
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", err
	}

	if err = writePEM(keyFilename, "PRIVATE KEY", privBytes); err != nil {
		return "", "", err
	}

	return certFilename, keyFilename, nil
}

func writePEM(filename, blockType string, data []byte) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err = pem.Encode(file, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func mkdirIfNotExists(dir string) error {
	if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
		return nil
	}

	return os.MkdirAll(dir, 0700)
}

func fileExists(filename string) bool {
	stat, err := os.Stat(filename)

	return err == nil && !stat.IsDir()
}
