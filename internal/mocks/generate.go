// Package mocks provides mock implementations for testing the gateway's ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the audit port. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockAudit := mocks.NewMockAuditLog(ctrl)
//	mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for AuditLog interface from internal/ports package.
// This creates MockAuditLog with methods for all AuditLog interface methods:
// Record
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_log_mock.go github.com/imblue/mep-ui-gateway/internal/ports AuditLog
