// Package mocks provides mock implementations of the poller's core ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	probe := mocks.NewMockStatusProbe(ctrl)
//	probe.EXPECT().FetchStatus(gomock.Any(), "c1").Return(snapshot, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=core_mock.go github.com/target/citation-poller/internal/core StatusProbe,StatusStore,CampaignReader,TriggerCanceller,CompletionNotifier,PollCycle,TriggerRepository,TriggerAdminRepository,TriggerScheduler
