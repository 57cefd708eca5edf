package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// mergeSection decodes "node" into the Config field for the recognized
// section "name", applying the overlay rule: scalars and sequences are
// replaced outright, mappings are merged key-by-key onto whatever the field
// already held (so a profile overlay only needs to mention the keys it
// changes).
func mergeSection(cfg *Config, name string, node *yaml.Node) error {
	switch name {
	case "common":
		return mergeMapping(node, &cfg.Common)
	case "koji":
		return mergeMapping(node, &cfg.Koji)
	case "commands":
		return mergeStringMap(node, &cfg.Commands)
	case "vendor":
		return mergeMapping(node, &cfg.Vendor)
	case "inspections":
		return mergeBoolMap(node, &cfg.Inspections)
	case "products":
		return mergeStringMap(node, &cfg.Products)
	case "ignore":
		return node.Decode(&cfg.Ignore)
	case "security_path_prefix":
		return node.Decode(&cfg.SecurityPathPrefix)
	case "badwords":
		return node.Decode(&cfg.Badwords)
	case "metadata":
		return mergeMapping(node, &cfg.Metadata)
	case "elf":
		return mergeMapping(node, &cfg.Elf)
	case "manpage":
		return mergeMapping(node, &cfg.Manpage)
	case "xml":
		return mergeMapping(node, &cfg.XML)
	case "desktop":
		return mergeMapping(node, &cfg.Desktop)
	case "changedfiles":
		return mergeMapping(node, &cfg.ChangedFiles)
	case "addedfiles":
		return mergeMapping(node, &cfg.AddedFiles)
	case "ownership":
		return mergeMapping(node, &cfg.Ownership)
	case "shellsyntax":
		return mergeMapping(node, &cfg.ShellSyntax)
	case "filesize":
		return mergeMapping(node, &cfg.FileSize)
	case "lto":
		return mergeMapping(node, &cfg.LTO)
	case "specname":
		return mergeMapping(node, &cfg.SpecName)
	case "annocheck":
		return mergeMapping(node, &cfg.AnnoCheck)
	case "javabytecode":
		return mergeMapping(node, &cfg.JavaByteCode)
	case "pathmigration":
		return mergeMapping(node, &cfg.PathMigration)
	case "files":
		return mergeMapping(node, &cfg.Files)
	case "abidiff":
		return mergeMapping(node, &cfg.Abidiff)
	case "kmidiff":
		return mergeMapping(node, &cfg.Kmidiff)
	case "patches":
		return mergeMapping(node, &cfg.Patches)
	case "badfuncs":
		return mergeMapping(node, &cfg.BadFuncs)
	case "runpath":
		return mergeMapping(node, &cfg.RunPath)
	case "emptyrpm":
		return mergeMapping(node, &cfg.EmptyRPM)
	case "types":
		return mergeMapping(node, &cfg.Types)
	default:
		return fmt.Errorf("unhandled recognized section %q", name)
	}
}

// mergeMapping decodes "node" key-by-key onto "dst", a pointer to a struct
// with `yaml:"..."` tags. Keys the node omits keep whatever "dst" already
// held; keys the struct doesn't recognize are silently dropped by
// yaml.v3's decoder. Only unrecognized top-level section names are reported
// (by decodeInto); unknown keys inside a section are not reported anywhere.
func mergeMapping(node *yaml.Node, dst any) error {
	if node.Kind != 0 && node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %v", node.Kind)
	}
	return node.Decode(dst)
}

// mergeStringMap merges a string->string mapping key-by-key into "*dst",
// creating it if nil.
func mergeStringMap(node *yaml.Node, dst *map[string]string) error {
	var incoming map[string]string
	if err := node.Decode(&incoming); err != nil {
		return err
	}
	if *dst == nil {
		*dst = make(map[string]string, len(incoming))
	}
	for k, v := range incoming {
		(*dst)[k] = v
	}
	return nil
}

// mergeBoolMap merges a string->bool mapping key-by-key, as used by the
// "inspections" section to enable/disable individual inspections.
func mergeBoolMap(node *yaml.Node, dst *map[string]bool) error {
	var incoming map[string]bool
	if err := node.Decode(&incoming); err != nil {
		return err
	}
	if *dst == nil {
		*dst = make(map[string]bool, len(incoming))
	}
	for k, v := range incoming {
		(*dst)[k] = v
	}
	return nil
}
