// Package catalog loads the item prices and deal descriptions a checkout is
// priced against, from CSV or YAML files, and validates them.
package catalog
