// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/internal/jsonconv"
	"github.com/gocmis/gocmis/internal/server"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/internal/xmlconv"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/errutil"
)

const repoID = "repo"

type fixture struct {
	repo    *inmemory.Repository
	srv     *httptest.Server
	metrics *server.Metrics
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := inmemory.New(inmemory.Options{ID: repoID, Logger: discard()})
	require.NoError(t, err)
	metrics := server.NewMetrics(prometheus.NewRegistry())
	h := server.NewHandler(repo, server.WithLogger(discard()), server.WithMetrics(metrics))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{repo: repo, srv: srv, metrics: metrics}
}

func (f *fixture) client(t *testing.T, c codec.Codec) *binding.Client {
	t.Helper()
	port, err := binding.NewHTTPPort(f.srv.URL, binding.WithCodec(c), binding.WithRetries(0, 0))
	require.NoError(t, err)
	return binding.NewClient(port)
}

func folderProps(name string) *cmis.Properties {
	return cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectTypeID, string(cmis.BaseTypeFolder)),
		cmis.NewStringProperty(cmis.PropName, name),
	)
}

func documentProps(name string) *cmis.Properties {
	return cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectTypeID, string(cmis.BaseTypeDocument)),
		cmis.NewStringProperty(cmis.PropName, name),
	)
}

func read(t *testing.T, cs *cmis.ContentStream) string {
	t.Helper()
	defer cs.Close()
	data, err := io.ReadAll(cs.Stream)
	require.NoError(t, err)
	return string(data)
}

func TestHandler_EveryFormat(t *testing.T) {
	tests := []struct {
		name  string
		codec codec.Codec
	}{
		{"json", jsonconv.New()},
		{"xml", xmlconv.New()},
		{"ws", wsconv.New()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			c := f.client(t, tt.codec)

			info, err := c.GetRepositoryInfo(ctx, repoID)
			require.NoError(t, err)
			assert.Equal(t, repoID, info.ID)

			folderID, err := c.CreateFolder(ctx, repoID, folderProps("reports"), info.RootFolderID)
			require.NoError(t, err)

			content := "first quarter"
			docID, err := c.CreateDocument(ctx, repoID, documentProps("q1.txt"), folderID,
				cmis.NewContentStream("q1.txt", "text/plain", strings.NewReader(content), int64(len(content))), "")
			require.NoError(t, err)

			od, err := c.GetObjectByPath(ctx, repoID, "/reports/q1.txt", binding.ObjectOptions{})
			require.NoError(t, err)
			assert.Equal(t, docID, od.ID())

			children, err := c.GetChildren(ctx, repoID, folderID, binding.ObjectOptions{}, binding.Paging{})
			require.NoError(t, err)
			require.Len(t, children.Objects, 1)
			assert.Equal(t, "q1.txt", children.Objects[0].Object.Properties.Name())

			cs, err := c.GetContentStream(ctx, repoID, docID, "")
			require.NoError(t, err)
			assert.Equal(t, "q1.txt", cs.Filename)
			assert.Equal(t, content, read(t, cs))

			_, err = c.GetObject(ctx, repoID, "missing", binding.ObjectOptions{})
			errutil.AssertServiceError(t, err, cmis.ErrorKindObjectNotFound)
		})
	}
}

func TestHandler_WriteOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, jsonconv.New())
	root := f.repo.RootFolderID()

	docID, err := c.CreateDocument(ctx, repoID, documentProps("draft.txt"), root, nil, cmis.VersioningStateMajor)
	require.NoError(t, err)

	t.Run("set and delete content", func(t *testing.T) {
		_, err := c.SetContentStream(ctx, repoID, docID, true,
			cmis.NewContentStream("draft.txt", "text/plain", strings.NewReader("hello"), -1))
		require.NoError(t, err)
		cs, err := c.GetContentStream(ctx, repoID, docID, "")
		require.NoError(t, err)
		assert.Equal(t, "hello", read(t, cs))

		_, err = c.DeleteContentStream(ctx, repoID, docID)
		require.NoError(t, err)
		_, err = c.GetContentStream(ctx, repoID, docID, "")
		errutil.AssertServiceError(t, err, cmis.ErrorKindConstraint)
	})

	t.Run("update properties", func(t *testing.T) {
		id, err := c.UpdateProperties(ctx, repoID, docID, "", cmis.NewProperties(
			cmis.NewStringProperty(cmis.PropName, "final.txt"),
		))
		require.NoError(t, err)
		props, err := c.GetProperties(ctx, repoID, id, "")
		require.NoError(t, err)
		assert.Equal(t, "final.txt", props.Name())
	})

	t.Run("acl", func(t *testing.T) {
		add := &cmis.Acl{Aces: []*cmis.Ace{cmis.NewAce("alice", "cmis:read")}}
		acl, err := c.ApplyAcl(ctx, repoID, docID, add, nil, "")
		require.NoError(t, err)
		got, err := c.GetAcl(ctx, repoID, docID, true)
		require.NoError(t, err)
		assert.Len(t, got.Aces, len(acl.Aces))
	})

	t.Run("multi-filing", func(t *testing.T) {
		folderID, err := c.CreateFolder(ctx, repoID, folderProps("archive"), root)
		require.NoError(t, err)
		require.NoError(t, c.AddObjectToFolder(ctx, repoID, docID, folderID, true))
		parents, err := c.GetObjectParents(ctx, repoID, docID, binding.ObjectOptions{})
		require.NoError(t, err)
		assert.Len(t, parents, 2)
		require.NoError(t, c.RemoveObjectFromFolder(ctx, repoID, docID, folderID))
	})

	t.Run("versioning", func(t *testing.T) {
		pwcID, err := c.CheckOut(ctx, repoID, docID)
		require.NoError(t, err)
		_, err = c.CheckIn(ctx, repoID, pwcID, true, nil,
			cmis.NewContentStream("final.txt", "text/plain", strings.NewReader("v2"), 2), "second")
		require.NoError(t, err)
		versions, err := c.GetAllVersions(ctx, repoID, docID, "")
		require.NoError(t, err)
		assert.Len(t, versions, 2)
	})

	t.Run("query", func(t *testing.T) {
		list, err := c.Query(ctx, repoID, &cmis.QueryStatement{
			Statement: "SELECT * FROM cmis:document WHERE cmis:name = 'final.txt'",
		})
		require.NoError(t, err)
		require.Len(t, list.Objects, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.DeleteObject(ctx, repoID, docID, true))
		_, err := c.GetObject(ctx, repoID, docID, binding.ObjectOptions{})
		errutil.AssertServiceError(t, err, cmis.ErrorKindObjectNotFound)
	})
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test request
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHandler_Defaults(t *testing.T) {
	f := newFixture(t)

	resp, data := get(t, f.srv.URL+"/browser/"+repoID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, jsonconv.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), f.repo.RootFolderID())

	resp, data = get(t, f.srv.URL+"/browser/"+repoID+"/root")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), f.repo.RootFolderID())

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/browser/"+repoID, nil) //nolint:noctx // test request
	require.NoError(t, err)
	req.Header.Set("Accept", "application/xml, application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, xmlconv.ContentType, resp.Header.Get("Content-Type"))
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture(t)
	base := f.srv.URL + "/browser/" + repoID

	tests := []struct {
		name      string
		method    string
		url       string
		status    int
		exception cmis.ErrorKind
	}{
		{"unknown selector", http.MethodGet, base + "?cmisselector=bogus", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"object selector at repository url", http.MethodGet, base + "?cmisselector=children", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"missing action", http.MethodPost, base + "/root", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"unsupported method", http.MethodPut, base, http.StatusMethodNotAllowed, cmis.ErrorKindNotSupported},
		{"unknown format", http.MethodGet, base + "?format=yaml", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"unknown version", http.MethodGet, base + "?cmisVersion=9.9", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"bad boolean", http.MethodGet, base + "/root?cmisselector=acl&objectId=x&onlyBasicPermissions=maybe", http.StatusBadRequest, cmis.ErrorKindInvalidArgument},
		{"missing object", http.MethodGet, base + "/root?cmisselector=object&objectId=nope", http.StatusNotFound, cmis.ErrorKindObjectNotFound},
		{"unknown repository", http.MethodGet, f.srv.URL + "/browser/other", http.StatusNotFound, cmis.ErrorKindObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, tt.url, nil) //nolint:noctx // test request
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			var body binding.ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, string(tt.exception), body.Exception)
		})
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	f := newFixture(t)
	url := f.srv.URL + "/browser/" + repoID + "/root?cmisaction=createFolder&folderId=" + f.repo.RootFolderID()

	resp, err := http.Post(url, jsonconv.ContentType, strings.NewReader(`{"cmis:name": [`)) //nolint:noctx // test request
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body binding.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(cmis.ErrorKindInvalidArgument), body.Exception)
}

func TestHandler_SOAPFault(t *testing.T) {
	f := newFixture(t)

	resp, data := get(t, f.srv.URL+"/browser/"+repoID+"/root?cmisselector=object&objectId=nope&format=ws")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, wsconv.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), "Fault")
	assert.Contains(t, string(data), string(cmis.ErrorKindObjectNotFound))
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(status int) { w.status = status }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandler_FaultWriteFailureIsReported(t *testing.T) {
	repo, err := inmemory.New(inmemory.Options{ID: repoID, Logger: discard()})
	require.NoError(t, err)

	for _, format := range []string{"json", "ws"} {
		t.Run(format, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			h := server.NewHandler(repo, server.WithLogger(logger))

			w := &brokenWriter{header: http.Header{}}
			r := httptest.NewRequest(http.MethodGet, "/browser/"+repoID+"/root?cmisselector=object&objectId=nope&format="+format, nil)
			h.ServeHTTP(w, r)

			assert.Equal(t, http.StatusNotFound, w.status)
			assert.Contains(t, logs.String(), "fault write failed")
			assert.Contains(t, logs.String(), "connection reset")
		})
	}
}

func TestHandler_Metrics(t *testing.T) {
	f := newFixture(t)

	get(t, f.srv.URL+"/browser/"+repoID)
	get(t, f.srv.URL+"/browser/"+repoID)
	get(t, f.srv.URL+"/browser/"+repoID+"/root?cmisselector=object&objectId=nope")
	get(t, f.srv.URL+"/browser/"+repoID+"?cmisselector=bogus")

	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(binding.SelectorRepositoryInfo, "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(binding.SelectorObject, "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("unknown", "400")), 0)
}

func TestHandler_ContentHeaders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, err := f.repo.CreateDocument(ctx, repoID, documentProps("report.csv"), f.repo.RootFolderID(),
		cmis.NewContentStream("report.csv", "text/csv", strings.NewReader("a,b\n"), 4), "")
	require.NoError(t, err)

	resp, data := get(t, f.srv.URL+"/browser/"+repoID+"/root?cmisselector=content&objectId="+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename=report.csv`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "4", resp.Header.Get("Content-Length"))
	assert.Equal(t, "a,b\n", string(data))
}

