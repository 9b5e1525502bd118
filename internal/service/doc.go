// Package service lists, inspects and restarts local OS services.
//
// Linux hosts are driven through systemctl and Windows hosts through sc.exe.
// Every other platform gets a Manager whose operations fail with
// ErrUnsupportedPlatform. Commands run through a Runner so tests can replace
// the OS with canned output.
package service
