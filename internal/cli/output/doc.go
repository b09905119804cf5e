// Package output renders scenelink-cli results as tables, JSON or YAML.
//
// Tables are built by reflection from structs, slices and maps. Embedded
// structs are flattened so that status types composed of several parts
// print as one key/value table. Fields tagged `table:"-"` are skipped and
// `table:"wide"` fields only show with --wide.
package output
