//go:build !windows

package supervisor

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
