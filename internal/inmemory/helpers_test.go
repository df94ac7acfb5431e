// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory_test

import (
	"context"
	"io"
	"log/slog"
	"strings"

	. "github.com/onsi/gomega" //nolint:revive // gomega convention

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/pkg/cmis"
)

const repoID = "test-repo"

func newRepository(opts inmemory.Options) *inmemory.Repository {
	if opts.ID == "" {
		opts.ID = repoID
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := inmemory.New(opts)
	Expect(err).NotTo(HaveOccurred())
	return repo
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

func text(name, s string) *cmis.ContentStream {
	return cmis.NewContentStream(name, "text/plain", strings.NewReader(s), int64(len(s)))
}

func mustFolder(ctx context.Context, repo *inmemory.Repository, name, parentID string) string {
	id, err := repo.CreateFolder(ctx, repoID, folderProps(name), parentID)
	Expect(err).NotTo(HaveOccurred())
	return id
}

func mustDocument(ctx context.Context, repo *inmemory.Repository, name, parentID, content string) string {
	id, err := repo.CreateDocument(ctx, repoID, documentProps(name), parentID, text(name, content), "")
	Expect(err).NotTo(HaveOccurred())
	return id
}

func mustObject(ctx context.Context, repo *inmemory.Repository, id string) *cmis.ObjectData {
	od, err := repo.GetObject(ctx, repoID, id, binding.ObjectOptions{})
	Expect(err).NotTo(HaveOccurred())
	return od
}

func readContent(ctx context.Context, repo *inmemory.Repository, id, streamID string) string {
	cs, err := repo.GetContentStream(ctx, repoID, id, streamID)
	Expect(err).NotTo(HaveOccurred())
	defer cs.Close()
	data, err := io.ReadAll(cs.Stream)
	Expect(err).NotTo(HaveOccurred())
	return string(data)
}

func names(ods []*cmis.ObjectData) []string {
	out := make([]string, 0, len(ods))
	for _, od := range ods {
		out = append(out, od.Properties.Name())
	}
	return out
}
