package transport

import (
	"crypto/tls"
	"net"
)

type TLS struct {
	cfg *tls.Config
	TCP
}

// NewTLS returns a transport serving TLS connections. The config must provide certificates,
// either statically or via GetCertificate.
func NewTLS(cfg *tls.Config) *TLS {
	return &TLS{cfg: cfg, TCP: newTCP(nil)}
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	l := tls.NewListener(tcp, t.cfg)
	t.TCP.l = tlsAdapter{tcp, l}

	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}
