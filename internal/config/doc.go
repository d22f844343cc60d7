// Package config defines the format-agnostic model describing a workload
// grid: the tasks to run, the memory regions each one reads and writes, and
// the runtime settings. Concrete formats (HCL) translate into this model;
// nothing here depends on a parser.
package config
