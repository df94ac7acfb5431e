// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// repositoryInfo writes a repository descriptor. Capabilities and
// features introduced in CMIS 1.1 are left out of 1.0 documents.
func (w *writer) repositoryInfo(name string, ri *cmis.RepositoryInfo) {
	for _, bt := range ri.ChangesOnType {
		if !bt.LegalIn(w.v) {
			w.violation("changesOnType " + string(bt))
			return
		}
	}
	w.open(name)
	w.text("cmis:repositoryId", ri.ID)
	w.text("cmis:repositoryName", ri.Name)
	w.text("cmis:repositoryDescription", ri.Description)
	w.text("cmis:vendorName", ri.VendorName)
	w.text("cmis:productName", ri.ProductName)
	w.text("cmis:productVersion", ri.ProductVersion)
	w.text("cmis:rootFolderId", ri.RootFolderID)
	w.optText("cmis:latestChangeLogToken", ri.LatestChangeLogToken)
	if ri.Capabilities != nil {
		w.capabilities(ri.Capabilities)
	}
	if ri.AclCapabilities != nil {
		w.aclCapabilities(ri.AclCapabilities)
	}
	w.text("cmis:cmisVersionSupported", ri.CmisVersionSupported)
	w.optText("cmis:thinClientURI", ri.ThinClientURI)
	w.optBoolean("cmis:changesIncomplete", ri.ChangesIncomplete)
	for _, bt := range ri.ChangesOnType {
		w.text("cmis:changesOnType", string(bt))
	}
	w.optText("cmis:principalAnonymous", ri.PrincipalAnonymous)
	w.optText("cmis:principalAnyone", ri.PrincipalAnyone)
	if w.v.Is11() {
		for _, f := range ri.ExtensionFeatures {
			w.extensionFeature(f)
		}
	}
	w.extensions(ri.Extensions())
	w.close(name)
}

func (w *writer) capabilities(c *cmis.RepositoryCapabilities) {
	w.open("cmis:capabilities")
	w.optText("cmis:capabilityACL", string(c.Acl))
	w.boolean("cmis:capabilityAllVersionsSearchable", c.AllVersionsSearchable)
	w.optText("cmis:capabilityChanges", string(c.Changes))
	w.optText("cmis:capabilityContentStreamUpdatability", string(c.ContentStreamUpdates))
	w.boolean("cmis:capabilityGetDescendants", c.GetDescendants)
	w.boolean("cmis:capabilityGetFolderTree", c.GetFolderTree)
	if w.v.Is11() {
		w.optText("cmis:capabilityOrderBy", string(c.OrderBy))
	}
	w.boolean("cmis:capabilityMultifiling", c.MultiFiling)
	w.boolean("cmis:capabilityPWCSearchable", c.PWCSearchable)
	w.boolean("cmis:capabilityPWCUpdatable", c.PWCUpdatable)
	w.optText("cmis:capabilityQuery", string(c.Query))
	w.optText("cmis:capabilityRenditions", string(c.Renditions))
	w.boolean("cmis:capabilityUnfiling", c.Unfiling)
	w.boolean("cmis:capabilityVersionSpecificFiling", c.VersionSpecificFiling)
	w.optText("cmis:capabilityJoin", string(c.Join))
	if w.v.Is11() && c.CreatablePropertyTypes != nil {
		w.open("cmis:capabilityCreatablePropertyTypes")
		for _, t := range c.CreatablePropertyTypes.CanCreate {
			w.text("cmis:canCreate", string(t))
		}
		w.extensions(c.CreatablePropertyTypes.Extensions())
		w.close("cmis:capabilityCreatablePropertyTypes")
	}
	if w.v.Is11() && c.NewTypeSettableAttributes != nil {
		a := c.NewTypeSettableAttributes
		w.open("cmis:capabilityNewTypeSettableAttributes")
		w.boolean("cmis:id", a.ID)
		w.boolean("cmis:localName", a.LocalName)
		w.boolean("cmis:localNamespace", a.LocalNamespace)
		w.boolean("cmis:displayName", a.DisplayName)
		w.boolean("cmis:queryName", a.QueryName)
		w.boolean("cmis:description", a.Description)
		w.boolean("cmis:creatable", a.Creatable)
		w.boolean("cmis:fileable", a.Fileable)
		w.boolean("cmis:queryable", a.Queryable)
		w.boolean("cmis:fulltextIndexed", a.FulltextIndexed)
		w.boolean("cmis:includedInSupertypeQuery", a.IncludedInSupertypeQuery)
		w.boolean("cmis:controllablePolicy", a.ControllablePolicy)
		w.boolean("cmis:controllableACL", a.ControllableACL)
		w.extensions(a.Extensions())
		w.close("cmis:capabilityNewTypeSettableAttributes")
	}
	w.extensions(c.Extensions())
	w.close("cmis:capabilities")
}

func (w *writer) aclCapabilities(c *cmis.AclCapabilities) {
	w.open("cmis:aclCapability")
	w.optText("cmis:supportedPermissions", string(c.SupportedPermissions))
	w.optText("cmis:propagation", string(c.Propagation))
	for _, p := range c.Permissions {
		w.open("cmis:permissions")
		w.text("cmis:permission", p.ID)
		w.optText("cmis:description", p.Description)
		w.extensions(p.Extensions())
		w.close("cmis:permissions")
	}
	for _, m := range c.PermissionMapping {
		w.open("cmis:mapping")
		w.text("cmis:key", m.Key)
		w.texts("cmis:permission", m.Permissions)
		w.extensions(m.Extensions())
		w.close("cmis:mapping")
	}
	w.extensions(c.Extensions())
	w.close("cmis:aclCapability")
}

func (w *writer) extensionFeature(f *cmis.ExtensionFeature) {
	w.open("cmis:extendedFeatures")
	w.text("cmis:id", f.ID)
	w.optText("cmis:url", f.URL)
	w.optText("cmis:commonName", f.CommonName)
	w.optText("cmis:versionLabel", f.VersionLabel)
	w.optText("cmis:description", f.Description)
	for _, d := range f.FeatureData {
		w.open("cmis:featureData")
		w.text("cmis:key", d.Key)
		w.text("cmis:value", d.Value)
		w.close("cmis:featureData")
	}
	w.extensions(f.Extensions())
	w.close("cmis:extendedFeatures")
}

func (r *reader) repositoryInfo() (*cmis.RepositoryInfo, error) {
	ri := &cmis.RepositoryInfo{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "repositoryId"):
			ri.ID, err = r.text()
		case is(el, "repositoryName"):
			ri.Name, err = r.text()
		case is(el, "repositoryDescription"):
			ri.Description, err = r.text()
		case is(el, "vendorName"):
			ri.VendorName, err = r.text()
		case is(el, "productName"):
			ri.ProductName, err = r.text()
		case is(el, "productVersion"):
			ri.ProductVersion, err = r.text()
		case is(el, "rootFolderId"):
			ri.RootFolderID, err = r.text()
		case is(el, "latestChangeLogToken"):
			ri.LatestChangeLogToken, err = r.text()
		case is(el, "capabilities"):
			ri.Capabilities, err = r.capabilities()
		case is(el, "aclCapability"):
			ri.AclCapabilities, err = r.aclCapabilities()
		case is(el, "cmisVersionSupported"):
			ri.CmisVersionSupported, err = r.text()
		case is(el, "thinClientURI"):
			ri.ThinClientURI, err = r.text()
		case is(el, "changesIncomplete"):
			ri.ChangesIncomplete, err = r.boolPtr()
		case is(el, "changesOnType"):
			var bt cmis.BaseTypeID
			if bt, err = enum(r, "base type", cmis.BaseTypeID.Valid); err == nil {
				ri.ChangesOnType = append(ri.ChangesOnType, bt)
			}
		case is(el, "principalAnonymous"):
			ri.PrincipalAnonymous, err = r.text()
		case is(el, "principalAnyone"):
			ri.PrincipalAnyone, err = r.text()
		case r.is11(el, "extendedFeatures"):
			var f *cmis.ExtensionFeature
			if f, err = r.extensionFeature(); err == nil {
				ri.ExtensionFeatures = append(ri.ExtensionFeatures, f)
			}
		default:
			err = r.unknown(el, ri)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ri, nil
}

func (r *reader) capabilities() (*cmis.RepositoryCapabilities, error) {
	c := &cmis.RepositoryCapabilities{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "capabilityACL"):
			c.Acl, err = enum(r, "capabilityACL", cmis.CapabilityAcl.Valid)
		case is(el, "capabilityAllVersionsSearchable"):
			c.AllVersionsSearchable, err = r.boolean()
		case is(el, "capabilityChanges"):
			c.Changes, err = enum(r, "capabilityChanges", cmis.CapabilityChanges.Valid)
		case is(el, "capabilityContentStreamUpdatability"):
			c.ContentStreamUpdates, err = enum(r, "capabilityContentStreamUpdatability", cmis.CapabilityContentStreamUpdates.Valid)
		case is(el, "capabilityGetDescendants"):
			c.GetDescendants, err = r.boolean()
		case is(el, "capabilityGetFolderTree"):
			c.GetFolderTree, err = r.boolean()
		case r.is11(el, "capabilityOrderBy"):
			c.OrderBy, err = enum(r, "capabilityOrderBy", cmis.CapabilityOrderBy.Valid)
		case is(el, "capabilityMultifiling"):
			c.MultiFiling, err = r.boolean()
		case is(el, "capabilityPWCSearchable"):
			c.PWCSearchable, err = r.boolean()
		case is(el, "capabilityPWCUpdatable"):
			c.PWCUpdatable, err = r.boolean()
		case is(el, "capabilityQuery"):
			c.Query, err = enum(r, "capabilityQuery", cmis.CapabilityQuery.Valid)
		case is(el, "capabilityRenditions"):
			c.Renditions, err = enum(r, "capabilityRenditions", cmis.CapabilityRenditions.Valid)
		case is(el, "capabilityUnfiling"):
			c.Unfiling, err = r.boolean()
		case is(el, "capabilityVersionSpecificFiling"):
			c.VersionSpecificFiling, err = r.boolean()
		case is(el, "capabilityJoin"):
			c.Join, err = enum(r, "capabilityJoin", cmis.CapabilityJoin.Valid)
		case r.is11(el, "capabilityCreatablePropertyTypes"):
			c.CreatablePropertyTypes, err = r.creatablePropertyTypes()
		case r.is11(el, "capabilityNewTypeSettableAttributes"):
			c.NewTypeSettableAttributes, err = r.newTypeSettableAttributes()
		default:
			err = r.unknown(el, c)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *reader) creatablePropertyTypes() (*cmis.CreatablePropertyTypes, error) {
	cpt := &cmis.CreatablePropertyTypes{}
	err := r.children(func(el xml.StartElement) error {
		if !is(el, "canCreate") {
			return r.unknown(el, cpt)
		}
		t, err := enum(r, "property type", cmis.PropertyType.Valid)
		if err == nil {
			cpt.CanCreate = append(cpt.CanCreate, t)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return cpt, nil
}

func (r *reader) newTypeSettableAttributes() (*cmis.NewTypeSettableAttributes, error) {
	a := &cmis.NewTypeSettableAttributes{}
	fields := map[string]*bool{
		"id":                       &a.ID,
		"localName":                &a.LocalName,
		"localNamespace":           &a.LocalNamespace,
		"displayName":              &a.DisplayName,
		"queryName":                &a.QueryName,
		"description":              &a.Description,
		"creatable":                &a.Creatable,
		"fileable":                 &a.Fileable,
		"queryable":                &a.Queryable,
		"fulltextIndexed":          &a.FulltextIndexed,
		"includedInSupertypeQuery": &a.IncludedInSupertypeQuery,
		"controllablePolicy":       &a.ControllablePolicy,
		"controllableACL":          &a.ControllableACL,
	}
	err := r.children(func(el xml.StartElement) error {
		field, ok := fields[el.Name.Local]
		if !ok || el.Name.Space != NamespaceCMIS {
			return r.unknown(el, a)
		}
		var err error
		*field, err = r.boolean()
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *reader) aclCapabilities() (*cmis.AclCapabilities, error) {
	c := &cmis.AclCapabilities{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "supportedPermissions"):
			c.SupportedPermissions, err = enum(r, "supportedPermissions", cmis.SupportedPermissions.Valid)
		case is(el, "propagation"):
			c.Propagation, err = enum(r, "propagation", cmis.AclPropagation.Valid)
		case is(el, "permissions"):
			p := &cmis.PermissionDefinition{}
			err = r.children(func(pel xml.StartElement) error {
				var err error
				switch {
				case is(pel, "permission"):
					p.ID, err = r.text()
				case is(pel, "description"):
					p.Description, err = r.text()
				default:
					err = r.unknown(pel, p)
				}
				return err
			})
			c.Permissions = append(c.Permissions, p)
		case is(el, "mapping"):
			m := &cmis.PermissionMapping{}
			err = r.children(func(mel xml.StartElement) error {
				switch {
				case is(mel, "key"):
					var err error
					m.Key, err = r.text()
					return err
				case is(mel, "permission"):
					s, err := r.text()
					m.Permissions = append(m.Permissions, s)
					return err
				}
				return r.unknown(mel, m)
			})
			c.PermissionMapping = append(c.PermissionMapping, m)
		default:
			err = r.unknown(el, c)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *reader) extensionFeature() (*cmis.ExtensionFeature, error) {
	f := &cmis.ExtensionFeature{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "id"):
			f.ID, err = r.text()
		case is(el, "url"):
			f.URL, err = r.text()
		case is(el, "commonName"):
			f.CommonName, err = r.text()
		case is(el, "versionLabel"):
			f.VersionLabel, err = r.text()
		case is(el, "description"):
			f.Description, err = r.text()
		case is(el, "featureData"):
			var d cmis.FeatureData
			err = r.children(func(del xml.StartElement) error {
				var err error
				switch {
				case is(del, "key"):
					d.Key, err = r.text()
				case is(del, "value"):
					d.Value, err = r.text()
				default:
					err = r.skip()
				}
				return err
			})
			f.FeatureData = append(f.FeatureData, d)
		default:
			err = r.unknown(el, f)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
