// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory_test

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/pkg/cmis"
)

var _ = Describe("Repository", func() {
	var (
		ctx  context.Context
		repo *inmemory.Repository
		root string
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newRepository(inmemory.Options{})
		root = repo.RootFolderID()
	})

	Describe("repository info", func() {
		It("describes the repository and its root folder", func() {
			info, err := repo.GetRepositoryInfo(ctx, repoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ID).To(Equal(repoID))
			Expect(info.RootFolderID).To(Equal(root))
			Expect(info.CmisVersionSupported).To(Equal(string(cmis.Version11)))
		})

		It("rejects an unknown repository id", func() {
			_, err := repo.GetRepositoryInfo(ctx, "elsewhere")
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindObjectNotFound))
		})

		It("honours context cancellation", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := repo.GetObject(canceled, repoID, root, binding.ObjectOptions{})
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("filing", func() {
		It("creates folders and documents addressable by path", func() {
			reports := mustFolder(ctx, repo, "reports", root)
			doc := mustDocument(ctx, repo, "q1.txt", reports, "first quarter")

			od, err := repo.GetObjectByPath(ctx, repoID, "/reports/q1.txt", binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(od.ID()).To(Equal(doc))

			folder := mustObject(ctx, repo, reports)
			Expect(folder.Properties.StringValue(cmis.PropPath)).To(Equal("/reports"))
			Expect(folder.Properties.StringValue(cmis.PropParentID)).To(Equal(root))
		})

		It("lists children in filing order with paging", func() {
			for _, name := range []string{"a", "b", "c"} {
				mustFolder(ctx, repo, name, root)
			}
			list, err := repo.GetChildren(ctx, repoID, root, binding.ObjectOptions{}, binding.Paging{MaxItems: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.HasMoreItems).To(BeTrue())
			Expect(list.NumItems.Int64()).To(Equal(int64(3)))
			Expect(list.Objects).To(HaveLen(2))
			Expect(list.Objects[0].PathSegment).To(Equal("a"))
			Expect(list.Objects[1].PathSegment).To(Equal("b"))
		})

		It("rejects a duplicate name in the same folder", func() {
			mustFolder(ctx, repo, "dup", root)
			_, err := repo.CreateFolder(ctx, repoID, folderProps("dup"), root)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindNameConstraintViolation))
		})

		It("walks descendants to the requested depth", func() {
			a := mustFolder(ctx, repo, "a", root)
			b := mustFolder(ctx, repo, "b", a)
			mustDocument(ctx, repo, "deep.txt", b, "x")

			tree, err := repo.GetDescendants(ctx, repoID, root, 2, binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(HaveLen(1))
			Expect(tree[0].Children).To(HaveLen(1))
			Expect(tree[0].Children[0].Children).To(BeEmpty())

			tree, err = repo.GetDescendants(ctx, repoID, root, -1, binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(tree[0].Children[0].Children).To(HaveLen(1))
			Expect(tree[0].Children[0].Children[0].Object.PathSegment).To(Equal("deep.txt"))
		})

		It("reports no parent for the root folder", func() {
			_, err := repo.GetObjectParents(ctx, repoID, root, binding.ObjectOptions{})
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindInvalidArgument))
		})

		It("refuses to delete a folder that is not empty", func() {
			f := mustFolder(ctx, repo, "full", root)
			mustDocument(ctx, repo, "x.txt", f, "x")
			err := repo.DeleteObject(ctx, repoID, f, true)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})

		It("moves objects between folders", func() {
			src := mustFolder(ctx, repo, "src", root)
			dst := mustFolder(ctx, repo, "dst", root)
			doc := mustDocument(ctx, repo, "m.txt", src, "x")

			_, err := repo.MoveObject(ctx, repoID, doc, dst, src)
			Expect(err).NotTo(HaveOccurred())

			parents, err := repo.GetObjectParents(ctx, repoID, doc, binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(parents).To(HaveLen(1))
			Expect(parents[0].Object.ID()).To(Equal(dst))
			Expect(parents[0].RelativePathSegment).To(Equal("m.txt"))
		})

		It("does not move a folder below itself", func() {
			outer := mustFolder(ctx, repo, "outer", root)
			inner := mustFolder(ctx, repo, "inner", outer)
			_, err := repo.MoveObject(ctx, repoID, outer, inner, root)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})
	})

	Describe("multi-filing", func() {
		It("files a document in several folders", func() {
			a := mustFolder(ctx, repo, "a", root)
			b := mustFolder(ctx, repo, "b", root)
			doc := mustDocument(ctx, repo, "shared.txt", a, "x")

			Expect(repo.AddObjectToFolder(ctx, repoID, doc, b, true)).To(Succeed())
			parents, err := repo.GetObjectParents(ctx, repoID, doc, binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(parents).To(HaveLen(2))

			Expect(repo.RemoveObjectFromFolder(ctx, repoID, doc, a)).To(Succeed())
			err = repo.RemoveObjectFromFolder(ctx, repoID, doc, b)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})

		It("does not multi-file folders", func() {
			a := mustFolder(ctx, repo, "a", root)
			b := mustFolder(ctx, repo, "b", root)
			err := repo.AddObjectToFolder(ctx, repoID, a, b, false)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})
	})

	Describe("properties", func() {
		It("rejects updates with a stale change token", func() {
			doc := mustDocument(ctx, repo, "p.txt", root, "x")
			token := mustObject(ctx, repo, doc).Properties.StringValue(cmis.PropChangeToken)

			_, err := repo.UpdateProperties(ctx, repoID, doc, token, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "p2.txt")))
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.UpdateProperties(ctx, repoID, doc, token, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "p3.txt")))
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindUpdateConflict))
			Expect(mustObject(ctx, repo, doc).Properties.Name()).To(Equal("p2.txt"))
		})

		It("refuses to write read-only properties", func() {
			doc := mustDocument(ctx, repo, "ro.txt", root, "x")
			_, err := repo.UpdateProperties(ctx, repoID, doc, "", cmis.NewProperties(cmis.NewStringProperty(cmis.PropCreatedBy, "mallory")))
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})

		It("filters properties by query name", func() {
			doc := mustDocument(ctx, repo, "f.txt", root, "x")
			props, err := repo.GetProperties(ctx, repoID, doc, cmis.PropName)
			Expect(err).NotTo(HaveOccurred())
			Expect(props.Has(cmis.PropName)).To(BeTrue())
			Expect(props.Has(cmis.PropObjectID)).To(BeTrue())
			Expect(props.Has(cmis.PropCreatedBy)).To(BeFalse())

			_, err = repo.GetProperties(ctx, repoID, doc, "cmis:nonsense")
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindFilterNotValid))
		})

		It("updates several objects in bulk", func() {
			a := mustDocument(ctx, repo, "a.txt", root, "x")
			b := mustDocument(ctx, repo, "b.txt", root, "x")
			out, err := repo.BulkUpdateProperties(ctx, repoID, &cmis.BulkUpdate{
				Objects: []*cmis.BulkUpdateObjectIDAndChangeToken{{ID: a}, {ID: b}, {ID: "missing"}},
				Properties: cmis.NewProperties(
					cmis.NewStringProperty(cmis.PropDescription, "bulk"),
				),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(2))
			Expect(mustObject(ctx, repo, b).Properties.StringValue(cmis.PropDescription)).To(Equal("bulk"))
		})
	})

	Describe("content", func() {
		It("stores content compressed and returns it intact", func() {
			repo = newRepository(inmemory.Options{CompressContent: true})
			body := strings.Repeat("compressible ", 1000)
			doc, err := repo.CreateDocument(ctx, repoID, documentProps("big.txt"), repo.RootFolderID(), text("big.txt", body), "")
			Expect(err).NotTo(HaveOccurred())

			Expect(readContent(ctx, repo, doc, "")).To(Equal(body))
			od := mustObject(ctx, repo, doc)
			Expect(od.Properties.IntegerValue(cmis.PropContentStreamLength).Int64()).To(Equal(int64(len(body))))
			p, ok := od.Properties.Get(cmis.PropContentStreamHash)
			Expect(ok).To(BeTrue())
			Expect(p.AnyValues()).To(HaveLen(2))
		})

		It("refuses to overwrite content unless asked", func() {
			doc := mustDocument(ctx, repo, "c.txt", root, "one")
			_, err := repo.SetContentStream(ctx, repoID, doc, false, text("c.txt", "two"))
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindContentAlreadyExists))

			_, err = repo.SetContentStream(ctx, repoID, doc, true, text("c.txt", "two"))
			Expect(err).NotTo(HaveOccurred())
			Expect(readContent(ctx, repo, doc, "")).To(Equal("two"))
		})

		It("deletes content", func() {
			doc := mustDocument(ctx, repo, "d.txt", root, "gone")
			_, err := repo.DeleteContentStream(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.GetContentStream(ctx, repoID, doc, "")
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})

		It("rejects content shorter than announced", func() {
			cs := cmis.NewContentStream("short.txt", "text/plain", strings.NewReader("abc"), 10)
			_, err := repo.CreateDocument(ctx, repoID, documentProps("short.txt"), root, cs, "")
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindInvalidArgument))
		})
	})

	Describe("renditions", func() {
		var doc string

		BeforeEach(func() {
			doc = mustDocument(ctx, repo, "pic.txt", root, "x")
			_, err := repo.AddRendition(ctx, repoID, doc, inmemory.RenditionSpec{
				Kind:    inmemory.KindThumbnail,
				Width:   32,
				Height:  32,
				Content: cmis.NewContentStream("thumb.png", "image/png", strings.NewReader("png"), 3),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("selects renditions by filter", func() {
			rs, err := repo.GetRenditions(ctx, repoID, doc, "image/*", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(rs).To(HaveLen(1))
			Expect(rs[0].Kind).To(Equal(inmemory.KindThumbnail))
			Expect(rs[0].Width.Int64()).To(Equal(int64(32)))

			rs, err = repo.GetRenditions(ctx, repoID, doc, "cmis:none", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(rs).To(BeEmpty())
		})

		It("serves rendition content by stream id", func() {
			rs, err := repo.GetRenditions(ctx, repoID, doc, "*", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(readContent(ctx, repo, doc, rs[0].StreamID)).To(Equal("png"))
		})

		It("rejects a filter mixing cmis:none with other terms", func() {
			_, err := repo.GetRenditions(ctx, repoID, doc, "cmis:none,image/*", binding.Paging{})
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindFilterNotValid))
		})
	})

	Describe("versioning", func() {
		var doc string

		BeforeEach(func() {
			doc = mustDocument(ctx, repo, "v.txt", root, "v1")
		})

		It("checks out, checks in and numbers versions", func() {
			pwc, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			Expect(pwc).NotTo(Equal(doc))

			_, err = repo.UpdateProperties(ctx, repoID, doc, "", cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "x.txt")))
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindVersioning))

			id, err := repo.CheckIn(ctx, repoID, pwc, true, nil, text("v.txt", "v2"), "second")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(pwc))

			latest := mustObject(ctx, repo, id)
			Expect(latest.Properties.StringValue(cmis.PropVersionLabel)).To(Equal("2.0"))
			Expect(latest.Properties.StringValue(cmis.PropCheckinComment)).To(Equal("second"))
			Expect(readContent(ctx, repo, id, "")).To(Equal("v2"))
			Expect(readContent(ctx, repo, doc, "")).To(Equal("v1"))

			versions, err := repo.GetAllVersions(ctx, repoID, doc, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).To(HaveLen(2))
			Expect(versions[0].ID()).To(Equal(id))

			children, err := repo.GetChildren(ctx, repoID, root, binding.ObjectOptions{}, binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(children.Objects).To(HaveLen(1))
			Expect(children.Objects[0].Object.ID()).To(Equal(id))
		})

		It("numbers minor versions within the current major", func() {
			pwc, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			id, err := repo.CheckIn(ctx, repoID, pwc, false, nil, nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(mustObject(ctx, repo, id).Properties.StringValue(cmis.PropVersionLabel)).To(Equal("1.1"))
		})

		It("refuses a second check-out", func() {
			_, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.CheckOut(ctx, repoID, doc)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindVersioning))
		})

		It("discards the working copy on cancel", func() {
			pwc, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.CancelCheckOut(ctx, repoID, pwc)).To(Succeed())

			_, err = repo.GetObject(ctx, repoID, pwc, binding.ObjectOptions{})
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindObjectNotFound))
			od := mustObject(ctx, repo, doc)
			checkedOut, _ := od.Properties.BooleanValue(cmis.PropIsVersionSeriesCheckedOut)
			Expect(checkedOut).To(BeFalse())
		})

		It("removes a document created checked out when the check-out is cancelled", func() {
			pwc, err := repo.CreateDocument(ctx, repoID, documentProps("draft.txt"), root, nil, cmis.VersioningStateCheckedOut)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.CancelCheckOut(ctx, repoID, pwc)).To(Succeed())

			_, err = repo.GetObjectByPath(ctx, repoID, "/draft.txt", binding.ObjectOptions{})
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindObjectNotFound))
		})

		It("deletes every version at once", func() {
			pwc, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.CheckIn(ctx, repoID, pwc, true, nil, nil, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeleteObject(ctx, repoID, doc, true)).To(Succeed())
			list, err := repo.GetChildren(ctx, repoID, root, binding.ObjectOptions{}, binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Objects).To(BeEmpty())
		})
	})

	Describe("relationships", func() {
		var a, b, rel string

		BeforeEach(func() {
			a = mustDocument(ctx, repo, "a.txt", root, "a")
			b = mustDocument(ctx, repo, "b.txt", root, "b")
			var err error
			rel, err = repo.CreateRelationship(ctx, repoID, cmis.NewProperties(
				cmis.NewIDProperty(cmis.PropObjectTypeID, string(cmis.BaseTypeRelationship)),
				cmis.NewStringProperty(cmis.PropName, "a-b"),
				cmis.NewIDProperty(cmis.PropSourceID, a),
				cmis.NewIDProperty(cmis.PropTargetID, b),
			))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists relationships by direction", func() {
			out, err := repo.GetObjectRelationships(ctx, repoID, a, true, binding.RelationshipDirectionSource, "", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Objects).To(HaveLen(1))
			Expect(out.Objects[0].ID()).To(Equal(rel))

			out, err = repo.GetObjectRelationships(ctx, repoID, a, true, binding.RelationshipDirectionTarget, "", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Objects).To(BeEmpty())
		})

		It("includes relationships in object data on request", func() {
			od, err := repo.GetObject(ctx, repoID, b, binding.ObjectOptions{IncludeRelationships: cmis.IncludeRelationshipsBoth})
			Expect(err).NotTo(HaveOccurred())
			Expect(od.Relationships).To(HaveLen(1))
		})

		It("keeps related objects until the relationship is gone", func() {
			err := repo.DeleteObject(ctx, repoID, a, true)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))

			Expect(repo.DeleteObject(ctx, repoID, rel, false)).To(Succeed())
			Expect(repo.DeleteObject(ctx, repoID, a, true)).To(Succeed())
		})
	})

	Describe("access control and policies", func() {
		It("merges and removes entries", func() {
			doc := mustDocument(ctx, repo, "secret.txt", root, "x")
			acl, err := repo.ApplyAcl(ctx, repoID, doc,
				&cmis.Acl{Aces: []*cmis.Ace{cmis.NewAce("alice", inmemory.PermissionRead, inmemory.PermissionWrite)}},
				nil, cmis.AclPropagationObjectOnly)
			Expect(err).NotTo(HaveOccurred())
			Expect(acl.Aces).To(HaveLen(1))

			acl, err = repo.ApplyAcl(ctx, repoID, doc, nil,
				&cmis.Acl{Aces: []*cmis.Ace{cmis.NewAce("alice", inmemory.PermissionWrite)}}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(acl.Aces[0].Permissions).To(Equal([]string{inmemory.PermissionRead}))

			_, err = repo.ApplyAcl(ctx, repoID, doc, nil,
				&cmis.Acl{Aces: []*cmis.Ace{cmis.NewAce("bob", inmemory.PermissionRead)}}, "")
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))
		})

		It("applies and removes policies", func() {
			doc := mustDocument(ctx, repo, "governed.txt", root, "x")
			policy, err := repo.CreatePolicy(ctx, repoID, cmis.NewProperties(
				cmis.NewIDProperty(cmis.PropObjectTypeID, string(cmis.BaseTypePolicy)),
				cmis.NewStringProperty(cmis.PropName, "retention"),
			), "")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.ApplyPolicy(ctx, repoID, policy, doc)).To(Succeed())
			applied, err := repo.GetAppliedPolicies(ctx, repoID, doc, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(names(applied)).To(Equal([]string{"retention"}))

			err = repo.DeleteObject(ctx, repoID, policy, false)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindConstraint))

			Expect(repo.RemovePolicy(ctx, repoID, policy, doc)).To(Succeed())
			Expect(repo.DeleteObject(ctx, repoID, policy, false)).To(Succeed())
		})
	})

	Describe("query", func() {
		var docs string

		BeforeEach(func() {
			docs = mustFolder(ctx, repo, "docs", root)
			sub := mustFolder(ctx, repo, "sub", docs)
			mustDocument(ctx, repo, "report-a.txt", docs, "a")
			mustDocument(ctx, repo, "report-b.txt", sub, "b")
			mustDocument(ctx, repo, "notes.txt", docs, "c")
		})

		query := func(statement string) *cmis.ObjectList {
			out, err := repo.Query(ctx, repoID, &cmis.QueryStatement{Statement: statement})
			Expect(err).NotTo(HaveOccurred())
			return out
		}

		It("filters with LIKE and orders the result", func() {
			out := query("SELECT cmis:name FROM cmis:document WHERE cmis:name LIKE 'report%' ORDER BY cmis:name DESC")
			Expect(names(out.Objects)).To(Equal([]string{"report-b.txt", "report-a.txt"}))
			Expect(out.Objects[0].Properties.Has(cmis.PropCreatedBy)).To(BeFalse())
		})

		It("restricts to a folder or a tree", func() {
			out := query("select * from cmis:document where IN_FOLDER('" + docs + "') order by cmis:name")
			Expect(names(out.Objects)).To(Equal([]string{"notes.txt", "report-a.txt"}))

			out = query("SELECT * FROM cmis:document WHERE IN_TREE('" + docs + "') AND cmis:name <> 'notes.txt' ORDER BY cmis:name ASC")
			Expect(names(out.Objects)).To(Equal([]string{"report-a.txt", "report-b.txt"}))
		})

		It("compares typed values", func() {
			out := query("SELECT * FROM cmis:document WHERE cmis:contentStreamLength >= 1 AND cmis:isLatestVersion = TRUE")
			Expect(out.NumItems.Int64()).To(Equal(int64(3)))
		})

		It("rejects malformed statements and unknown names", func() {
			for _, statement := range []string{
				"SELECT FROM",
				"SELECT * FROM cmis:nothing",
				"SELECT * FROM cmis:document WHERE cmis:nothing = 'x'",
				"SELECT * FROM cmis:document WHERE cmis:name = 'a' OR cmis:name = 'b'",
			} {
				_, err := repo.Query(ctx, repoID, &cmis.QueryStatement{Statement: statement})
				Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindInvalidArgument), statement)
			}
		})
	})

	Describe("change log", func() {
		It("reports changes from a token onwards", func() {
			all, err := repo.GetContentChanges(ctx, repoID, "", false, 0)
			Expect(err).NotTo(HaveOccurred())
			before := len(all.Objects)

			doc := mustDocument(ctx, repo, "changed.txt", root, "x")
			Expect(repo.DeleteObject(ctx, repoID, doc, true)).To(Succeed())

			all, err = repo.GetContentChanges(ctx, repoID, "", true, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all.Objects).To(HaveLen(before + 2))

			created := all.Objects[before]
			Expect(created.ChangeEventInfo.ChangeType).To(Equal(cmis.ChangeTypeCreated))
			Expect(created.Properties.Name()).To(Equal("changed.txt"))

			token := created.Properties.StringValue(cmis.PropChangeToken)
			tail, err := repo.GetContentChanges(ctx, repoID, token, false, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail.HasMoreItems).To(BeTrue())
			Expect(tail.Objects[0].ID()).To(Equal(doc))
		})

		It("rejects tokens it did not issue", func() {
			_, err := repo.GetContentChanges(ctx, repoID, "not-a-token", false, 0)
			Expect(cmis.KindOf(err)).To(Equal(cmis.ErrorKindInvalidArgument))
		})
	})

	Describe("snapshots", func() {
		It("restores objects, versions and content", func() {
			f := mustFolder(ctx, repo, "kept", root)
			doc := mustDocument(ctx, repo, "kept.txt", f, "payload")
			pwc, err := repo.CheckOut(ctx, repoID, doc)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(repo.Snapshot(&buf)).To(Succeed())

			restored := newRepository(inmemory.Options{})
			Expect(restored.Restore(&buf)).To(Succeed())
			Expect(restored.RootFolderID()).To(Equal(root))

			od, err := restored.GetObjectByPath(ctx, repoID, "/kept/kept.txt", binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(od.ID()).To(Equal(doc))
			Expect(readContent(ctx, restored, doc, "")).To(Equal("payload"))
			Expect(od.Properties.StringValue(cmis.PropVersionSeriesCheckedOutID)).To(Equal(pwc))
		})

		It("refuses a snapshot of another repository", func() {
			var buf bytes.Buffer
			Expect(repo.Snapshot(&buf)).To(Succeed())
			other := newRepository(inmemory.Options{ID: "other"})
			Expect(other.Restore(&buf)).NotTo(Succeed())
		})
	})

	Describe("seeding", func() {
		It("creates the objects of a seed file", func() {
			seed := `
objects:
  - path: /reports/2026/q1.txt
    content: first quarter
    mimeType: text/plain
    properties:
      cmis:description: Quarterly report
  - path: /reports/summary.txt
    content: summary
relationships:
  - source: /reports/summary.txt
    target: /reports/2026/q1.txt
`
			Expect(repo.Seed(ctx, strings.NewReader(seed))).To(Succeed())

			od, err := repo.GetObjectByPath(ctx, repoID, "/reports/2026/q1.txt", binding.ObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(od.Properties.StringValue(cmis.PropDescription)).To(Equal("Quarterly report"))
			Expect(od.Properties.StringValue(cmis.PropContentStreamMimeType)).To(Equal("text/plain"))

			rels, err := repo.GetObjectRelationships(ctx, repoID, od.ID(), false, binding.RelationshipDirectionTarget, "", binding.Paging{})
			Expect(err).NotTo(HaveOccurred())
			Expect(rels.Objects).To(HaveLen(1))
		})

		It("rejects properties the type does not define", func() {
			seed := `
objects:
  - path: /x
    properties:
      cmis:nonsense: 1
`
			Expect(repo.Seed(ctx, strings.NewReader(seed))).NotTo(Succeed())
		})
	})
})
