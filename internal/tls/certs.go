// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package tls generates and loads the certificates gocmis serves HTTPS with.
package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	cryptotls "crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// File names inside a certs directory.
const (
	CAName     = "root-ca"
	ServerName = "server"
)

// renewBefore is how close to expiry a server certificate is replaced.
const renewBefore = 7 * 24 * time.Hour

// CA holds a certificate authority certificate and private key.
type CA struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
}

// ServerCert holds a server certificate and private key.
type ServerCert struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
	Name        string
}

// GenerateCA creates a new root CA for a repository. The repository id is
// included in:
//   - CN (Common Name): "GoCMIS CA {repositoryID}"
//   - SAN (Subject Alternative Name) as URI: gocmis://repository/{repositoryID}
func GenerateCA(repositoryID string) (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CA key: %w", err)
	}

	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}

	repoURI, err := url.Parse("gocmis://repository/" + url.PathEscape(repositoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to create repository URI: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"GoCMIS"},
			CommonName:   "GoCMIS CA " + repositoryID,
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		URIs:                  []*url.URL{repoURI},
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}

	return &CA{Certificate: cert, PrivateKey: key}, nil
}

// GenerateServerCert creates a server certificate signed by the CA.
// It is always valid for localhost and 127.0.0.1; hosts adds further DNS
// names or IP addresses.
func GenerateServerCert(ca *CA, name string, hosts []string) (*ServerCert, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate server key: %w", err)
	}

	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"GoCMIS"},
			CommonName:   "gocmis-" + name,
		},
		NotBefore:   time.Now().Add(-time.Minute),
		NotAfter:    time.Now().AddDate(1, 0, 0),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1")},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			if !ip.IsUnspecified() && !slices.ContainsFunc(template.IPAddresses, ip.Equal) {
				template.IPAddresses = append(template.IPAddresses, ip)
			}
			continue
		}
		if h != "" && !slices.Contains(template.DNSNames, h) {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, template, ca.Certificate, &key.PublicKey, ca.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create server certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server certificate: %w", err)
	}

	return &ServerCert{Certificate: cert, PrivateKey: key, Name: name}, nil
}

// SaveCertificates saves the CA and optionally a server certificate to the certs directory.
// CA is saved as root-ca.crt and root-ca.key.
// Server certificate is saved as {name}.crt and {name}.key.
func SaveCertificates(certsDir string, ca *CA, serverCert *ServerCert) error {
	if err := os.MkdirAll(certsDir, 0o700); err != nil {
		return fmt.Errorf("failed to create certs directory: %w", err)
	}

	if err := saveCert(filepath.Join(certsDir, CAName+".crt"), ca.Certificate); err != nil {
		return fmt.Errorf("failed to save CA certificate: %w", err)
	}
	if err := saveKey(filepath.Join(certsDir, CAName+".key"), ca.PrivateKey); err != nil {
		return fmt.Errorf("failed to save CA key: %w", err)
	}

	if serverCert != nil {
		if err := saveCert(filepath.Join(certsDir, serverCert.Name+".crt"), serverCert.Certificate); err != nil {
			return fmt.Errorf("failed to save server certificate: %w", err)
		}
		if err := saveKey(filepath.Join(certsDir, serverCert.Name+".key"), serverCert.PrivateKey); err != nil {
			return fmt.Errorf("failed to save server key: %w", err)
		}
	}

	return nil
}

// LoadCA loads an existing CA from the certs directory.
// Returns an error if the CA files don't exist or can't be parsed.
func LoadCA(certsDir string) (*CA, error) {
	cert, key, err := loadPair(certsDir, CAName)
	if err != nil {
		return nil, fmt.Errorf("failed to load CA: %w", err)
	}
	if !cert.IsCA {
		return nil, fmt.Errorf("certificate %s.crt is not a CA", CAName)
	}
	return &CA{Certificate: cert, PrivateKey: key}, nil
}

// LoadServerCert loads the server certificate called name from the certs
// directory.
func LoadServerCert(certsDir, name string) (*ServerCert, error) {
	cert, key, err := loadPair(certsDir, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}
	return &ServerCert{Certificate: cert, PrivateKey: key, Name: name}, nil
}

// ServerConfig returns the TLS configuration of the CMIS endpoint. The CA
// in certsDir is created on first use. The server certificate is reused
// while it is signed by that CA, covers hosts and is not close to expiry;
// otherwise a new one is issued and saved.
func ServerConfig(certsDir, repositoryID string, hosts []string) (*cryptotls.Config, error) {
	ca, err := LoadCA(certsDir)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if ca, err = GenerateCA(repositoryID); err != nil {
			return nil, err
		}
		if err := SaveCertificates(certsDir, ca, nil); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	sc, err := LoadServerCert(certsDir, ServerName)
	if err != nil || !usable(sc.Certificate, ca, hosts) {
		if sc, err = GenerateServerCert(ca, ServerName, hosts); err != nil {
			return nil, err
		}
		if err := SaveCertificates(certsDir, ca, sc); err != nil {
			return nil, err
		}
	}

	return &cryptotls.Config{
		Certificates: []cryptotls.Certificate{{
			Certificate: [][]byte{sc.Certificate.Raw, ca.Certificate.Raw},
			PrivateKey:  sc.PrivateKey,
			Leaf:        sc.Certificate,
		}},
		MinVersion: cryptotls.VersionTLS12,
	}, nil
}

// ClientConfig returns a TLS configuration trusting the CA certificate in
// caFile, in addition to the system roots.
func ClientConfig(caFile string) (*cryptotls.Config, error) {
	pemData, err := os.ReadFile(filepath.Clean(caFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	return &cryptotls.Config{RootCAs: pool, MinVersion: cryptotls.VersionTLS12}, nil
}

// usable reports whether cert was issued by ca, covers every host and
// stays valid beyond the renewal window.
func usable(cert *x509.Certificate, ca *CA, hosts []string) bool {
	if cert.CheckSignatureFrom(ca.Certificate) != nil {
		return false
	}
	if time.Until(cert.NotAfter) < renewBefore {
		return false
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil && ip.IsUnspecified() {
			continue
		}
		if h != "" && cert.VerifyHostname(h) != nil {
			return false
		}
	}
	return true
}

func serialNumber() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial: %w", err)
	}
	return serial, nil
}

// loadPair reads {name}.crt and {name}.key from dir.
func loadPair(dir, name string) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	certPEM, err := os.ReadFile(filepath.Clean(filepath.Join(dir, name+".crt")))
	if err != nil {
		return nil, nil, err
	}
	keyPEM, err := os.ReadFile(filepath.Clean(filepath.Join(dir, name+".key")))
	if err != nil {
		return nil, nil, err
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, nil, fmt.Errorf("failed to decode %s certificate PEM", name)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s certificate: %w", name, err)
	}

	block, _ = pem.Decode(keyPEM)
	if block == nil {
		return nil, nil, fmt.Errorf("failed to decode %s key PEM", name)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s key: %w", name, err)
	}

	return cert, key, nil
}

// saveCert saves a certificate to a PEM file.
func saveCert(path string, cert *x509.Certificate) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create cert file: %w", err)
	}

	if err := pem.Encode(f, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close cert file: %w", err)
	}

	return nil
}

// saveKey saves an ECDSA private key to a PEM file.
func saveKey(path string, key *ecdsa.PrivateKey) error {
	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}

	if err := pem.Encode(f, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close key file: %w", err)
	}

	return nil
}
