// Package hcl is the HCL implementation of config.Loader. Grid files
// declare task blocks with the regions they touch and a runtime block for
// the resource pool:
//
//	runtime {
//	  workers = 4
//	}
//
//	task "producer" {
//	  writes  = ["0x1000+16"]
//	  busy_us = 50
//	}
//
//	task "consumer" {
//	  reads     = ["0x1000+16"]
//	  async_ops = 2
//	}
//
// Regions are written as base+length, with the base in any Go integer
// literal form (0x1000, 4096).
package hcl
