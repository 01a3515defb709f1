// Package doctor inspects an application tree for the problems that make a
// rebuild or a boot fail: missing module roots, an unreadable registry,
// registered modules whose directory is gone, dangling published links and a
// broken active profile. With fix enabled it creates missing directories.
package doctor
