package rcpkg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"canticle/internal/store"
)

// TreeFilename is the content tree file inside a container directory.
const TreeFilename = "content/tree.toml"

type treeFile struct {
	Root treeNode `toml:"root"`
}

type treeNode struct {
	Slug     string     `toml:"slug"`
	Title    string     `toml:"title"`
	Label    string     `toml:"label"`
	Sort     int64      `toml:"sort"`
	Items    []treeItem `toml:"items"`
	Children []treeNode `toml:"children"`
}

type treeItem struct {
	Sort   int64  `toml:"sort"`
	Start  int64  `toml:"start"`
	Label  string `toml:"label"`
	Text   string `toml:"text"`
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// LoadPackage reads a container directory (manifest plus content tree) into
// a Package ready for import.
func LoadPackage(dir string) (*Package, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	containerType := ContainerType(m.DublinCore.Type)
	switch containerType {
	case TypeBook, TypeBundle, TypeHelp:
	default:
		return nil, fmt.Errorf("manifest declares unknown container type %q", m.DublinCore.Type)
	}

	relations, err := ParseRelations(m.DublinCore.Relations)
	if err != nil {
		return nil, err
	}

	treePath := filepath.Join(dir, filepath.FromSlash(TreeFilename))
	data, err := os.ReadFile(treePath)
	if err != nil {
		return nil, fmt.Errorf("read content tree: %w", err)
	}
	var tf treeFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse content tree %s: %w", treePath, err)
	}
	root, err := buildNode(&tf.Root)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Path: dir,
		Type: containerType,
		Language: Language{
			Slug:      m.DublinCore.Language.Identifier,
			Name:      m.DublinCore.Language.Title,
			Direction: m.DublinCore.Language.Direction,
		},
		Metadata: Metadata{
			ConformsTo:  m.DublinCore.ConformsTo,
			Creator:     m.DublinCore.Creator,
			Description: m.DublinCore.Description,
			Format:      m.DublinCore.Format,
			Identifier:  m.DublinCore.Identifier,
			Issued:      m.DublinCore.Issued,
			Modified:    m.DublinCore.Modified,
			Publisher:   m.DublinCore.Publisher,
			Subject:     m.DublinCore.Subject,
			Type:        m.DublinCore.Type,
			Title:       m.DublinCore.Title,
			Version:     m.DublinCore.Version,
		},
		Relations: relations,
		Root:      root,
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

func buildNode(tn *treeNode) (*Node, error) {
	node := NewCollectionNode(CollectionSpec{
		Slug:  tn.Slug,
		Title: tn.Title,
		Label: tn.Label,
		Sort:  tn.Sort,
	})
	for i := range tn.Items {
		item := &tn.Items[i]
		ct, err := contentTypeOf(item.Type)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, NewContentNode(ContentSpec{
			Sort:   item.Sort,
			Start:  item.Start,
			Label:  item.Label,
			Text:   item.Text,
			Format: item.Format,
			Type:   ct,
		}))
	}
	for i := range tn.Children {
		child, err := buildNode(&tn.Children[i])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func contentTypeOf(name string) (store.ContentType, error) {
	switch ct := store.ContentType(name); ct {
	case store.ContentTypeText, store.ContentTypeMeta, store.ContentTypeTitle, store.ContentTypeBody:
		return ct, nil
	default:
		return "", fmt.Errorf("unknown content type %q in content tree", name)
	}
}
