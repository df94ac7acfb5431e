// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package tls

import (
	cryptotls "crypto/tls"
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const repositoryID = "docs"

func TestGenerateCA(t *testing.T) {
	tmpDir := t.TempDir()

	ca, err := GenerateCA(repositoryID)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}

	if ca.Certificate == nil {
		t.Fatal("CA certificate is nil")
	}
	if ca.PrivateKey == nil {
		t.Fatal("CA private key is nil")
	}
	if !ca.Certificate.IsCA {
		t.Error("Certificate is not a CA")
	}

	expectedCN := "GoCMIS CA " + repositoryID
	if ca.Certificate.Subject.CommonName != expectedCN {
		t.Errorf("CA CN = %q, want %q", ca.Certificate.Subject.CommonName, expectedCN)
	}

	expectedURI := "gocmis://repository/" + repositoryID
	if len(ca.Certificate.URIs) != 1 || ca.Certificate.URIs[0].String() != expectedURI {
		t.Errorf("CA SAN URIs = %v, want [%s]", ca.Certificate.URIs, expectedURI)
	}

	if err := SaveCertificates(tmpDir, ca, nil); err != nil {
		t.Fatalf("SaveCertificates() error = %v", err)
	}

	cert, err := cryptotls.LoadX509KeyPair(filepath.Join(tmpDir, "root-ca.crt"), filepath.Join(tmpDir, "root-ca.key"))
	if err != nil {
		t.Fatalf("Failed to load CA: %v", err)
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("Failed to parse cert: %v", err)
	}
	if !x509Cert.IsCA {
		t.Error("Loaded certificate is not a CA")
	}
}

func TestGenerateServerCert(t *testing.T) {
	ca, err := GenerateCA(repositoryID)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}

	sc, err := GenerateServerCert(ca, ServerName, []string{"cmis.example.com", "10.0.0.5", "0.0.0.0", "localhost"})
	if err != nil {
		t.Fatalf("GenerateServerCert() error = %v", err)
	}

	if err := sc.Certificate.CheckSignatureFrom(ca.Certificate); err != nil {
		t.Errorf("server certificate not signed by CA: %v", err)
	}
	for _, host := range []string{"localhost", "127.0.0.1", "cmis.example.com", "10.0.0.5"} {
		if err := sc.Certificate.VerifyHostname(host); err != nil {
			t.Errorf("VerifyHostname(%q) error = %v", host, err)
		}
	}
	if len(sc.Certificate.DNSNames) != 2 {
		t.Errorf("DNSNames = %v, want localhost and cmis.example.com once each", sc.Certificate.DNSNames)
	}
	for _, ip := range sc.Certificate.IPAddresses {
		if ip.IsUnspecified() {
			t.Error("unspecified address must not be a SAN")
		}
	}
	if len(sc.Certificate.ExtKeyUsage) != 1 || sc.Certificate.ExtKeyUsage[0] != x509.ExtKeyUsageServerAuth {
		t.Errorf("ExtKeyUsage = %v, want server auth", sc.Certificate.ExtKeyUsage)
	}
}

func TestSaveAndLoadCertificates(t *testing.T) {
	tmpDir := t.TempDir()

	ca, err := GenerateCA(repositoryID)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}
	sc, err := GenerateServerCert(ca, ServerName, nil)
	if err != nil {
		t.Fatalf("GenerateServerCert() error = %v", err)
	}
	if err := SaveCertificates(tmpDir, ca, sc); err != nil {
		t.Fatalf("SaveCertificates() error = %v", err)
	}

	for _, name := range []string{"root-ca.crt", "root-ca.key", "server.crt", "server.key"} {
		info, err := os.Stat(filepath.Join(tmpDir, name))
		if err != nil {
			t.Fatalf("Stat(%s) error = %v", name, err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("%s permissions = %o, want 0600", name, perm)
		}
	}

	loadedCA, err := LoadCA(tmpDir)
	if err != nil {
		t.Fatalf("LoadCA() error = %v", err)
	}
	if !loadedCA.Certificate.Equal(ca.Certificate) {
		t.Error("loaded CA differs from saved CA")
	}

	loaded, err := LoadServerCert(tmpDir, ServerName)
	if err != nil {
		t.Fatalf("LoadServerCert() error = %v", err)
	}
	if !loaded.Certificate.Equal(sc.Certificate) {
		t.Error("loaded server certificate differs from saved one")
	}
}

func TestLoadCA_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name:  "missing files",
			setup: func(*testing.T, string) {},
		},
		{
			name: "invalid certificate PEM",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "root-ca.crt"), "not pem")
				writeFile(t, filepath.Join(dir, "root-ca.key"), "not pem")
			},
		},
		{
			name: "server certificate in place of CA",
			setup: func(t *testing.T, dir string) {
				ca, err := GenerateCA(repositoryID)
				if err != nil {
					t.Fatalf("GenerateCA() error = %v", err)
				}
				sc, err := GenerateServerCert(ca, CAName, nil)
				if err != nil {
					t.Fatalf("GenerateServerCert() error = %v", err)
				}
				if err := saveCert(filepath.Join(dir, "root-ca.crt"), sc.Certificate); err != nil {
					t.Fatal(err)
				}
				if err := saveKey(filepath.Join(dir, "root-ca.key"), sc.PrivateKey); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			if _, err := LoadCA(dir); err == nil {
				t.Error("LoadCA() expected error")
			}
		})
	}
}

func TestServerConfig_CreatesAndReuses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	first, err := ServerConfig(dir, repositoryID, []string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("ServerConfig() error = %v", err)
	}
	if len(first.Certificates) != 1 {
		t.Fatalf("Certificates = %d, want 1", len(first.Certificates))
	}
	if first.MinVersion != cryptotls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want TLS 1.2", first.MinVersion)
	}

	second, err := ServerConfig(dir, repositoryID, []string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("ServerConfig() second call error = %v", err)
	}
	if !second.Certificates[0].Leaf.Equal(first.Certificates[0].Leaf) {
		t.Error("server certificate was reissued although it was still usable")
	}

	third, err := ServerConfig(dir, repositoryID, []string{"cmis.internal"})
	if err != nil {
		t.Fatalf("ServerConfig() new host error = %v", err)
	}
	if third.Certificates[0].Leaf.Equal(first.Certificates[0].Leaf) {
		t.Error("server certificate was not reissued for a new host")
	}
	if err := third.Certificates[0].Leaf.VerifyHostname("cmis.internal"); err != nil {
		t.Errorf("reissued certificate does not cover new host: %v", err)
	}
}

func TestUsable(t *testing.T) {
	dir := t.TempDir()
	ca, err := GenerateCA(repositoryID)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}
	sc, err := GenerateServerCert(ca, ServerName, nil)
	if err != nil {
		t.Fatalf("GenerateServerCert() error = %v", err)
	}
	if err := SaveCertificates(dir, ca, sc); err != nil {
		t.Fatalf("SaveCertificates() error = %v", err)
	}

	if !usable(sc.Certificate, ca, nil) {
		t.Fatal("fresh certificate should be usable")
	}
	expiring := *sc.Certificate
	expiring.NotAfter = time.Now().Add(time.Hour)
	if usable(&expiring, ca, nil) {
		t.Error("certificate about to expire should not be usable")
	}

	other, err := GenerateCA("other")
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}
	if usable(sc.Certificate, other, nil) {
		t.Error("certificate from another CA should not be usable")
	}
}

func TestServerAndClientConfig_Handshake(t *testing.T) {
	dir := t.TempDir()
	serverConfig, err := ServerConfig(dir, repositoryID, []string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("ServerConfig() error = %v", err)
	}

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	srv.TLS = serverConfig
	srv.StartTLS()
	defer srv.Close()

	clientConfig, err := ClientConfig(filepath.Join(dir, "root-ca.crt"))
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientConfig}, Timeout: 5 * time.Second}

	resp, err := client.Get(srv.URL) //nolint:noctx // test request
	if err != nil {
		t.Fatalf("GET over TLS error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestClientConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ClientConfig(filepath.Join(dir, "absent.crt")); err == nil {
		t.Error("ClientConfig() expected error for missing file")
	}
	path := filepath.Join(dir, "empty.crt")
	writeFile(t, path, "no certificates here")
	if _, err := ClientConfig(path); err == nil {
		t.Error("ClientConfig() expected error for file without certificates")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
