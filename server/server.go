// Package server runs the HTTP server with optional TLS, either from a
// certificate pair or via ACME autocert.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

const (
	DefaultPort    = "8080"
	DefaultTLSMode = "auto"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type ServerTLS struct {
	Enabled  bool
	Mode     string
	AutoCert *ServerTLSAutoCert
	CertFile string
	KeyFile  string
}

type ServerTLSAutoCert struct {
	CacheDir string
	Domains  []string
	Email    string
}

type Server struct {
	Host string
	Port string
	TLS  ServerTLS
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		var err error

		switch {
		case !s.TLS.Enabled:
			slog.InfoContext(ctx, "starting http server", "address", "http://"+srv.Addr)
			err = srv.ListenAndServe()
		case s.TLS.Mode == DefaultTLSMode:
			manager, mErr := s.autoCertManager()
			if mErr != nil {
				errCh <- mErr

				return
			}

			srv.TLSConfig = manager.TLSConfig()

			slog.InfoContext(ctx, "starting https server", "address", domainsToHTTPSAddress(s.TLS.AutoCert.Domains))
			err = srv.ListenAndServeTLS("", "")
		default:
			srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}

			slog.InfoContext(ctx, "starting https server", "address", "https://"+srv.Addr)
			err = srv.ListenAndServeTLS(s.TLS.CertFile, s.TLS.KeyFile)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (s *Server) autoCertManager() (*autocert.Manager, error) {
	if s.TLS.AutoCert == nil || len(s.TLS.AutoCert.Domains) == 0 {
		return nil, errors.New("autocert requires at least one domain")
	}

	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(s.TLS.AutoCert.CacheDir),
		HostPolicy: autocert.HostWhitelist(s.TLS.AutoCert.Domains...),
		Email:      s.TLS.AutoCert.Email,
	}, nil
}

func domainsToHTTPSAddress(domains []string) string {
	addresses := make([]string, 0, len(domains))

	for _, domain := range domains {
		addresses = append(addresses, "https://"+domain)
	}

	return strings.Join(addresses, ", ")
}
