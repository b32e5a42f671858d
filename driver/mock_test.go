package driver_test

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memsim/cache"
	"github.com/sarchlab/memsim/vm"
)

// MockTranslator is a hand-written go.uber.org/mock double for
// driver.Translator, in the shape `mockgen` would produce.
type MockTranslator struct {
	ctrl     *gomock.Controller
	recorder *MockTranslatorMockRecorder
}

type MockTranslatorMockRecorder struct {
	mock *MockTranslator
}

func NewMockTranslator(ctrl *gomock.Controller) *MockTranslator {
	m := &MockTranslator{ctrl: ctrl}
	m.recorder = &MockTranslatorMockRecorder{m}
	return m
}

func (m *MockTranslator) EXPECT() *MockTranslatorMockRecorder {
	return m.recorder
}

func (m *MockTranslator) Translate(va uint64) (uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Translate", va)
	return ret[0].(uint64), asError(ret[1])
}

func (mr *MockTranslatorMockRecorder) Translate(va interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Translate",
		reflect.TypeOf((*MockTranslator)(nil).Translate), va)
}

func (m *MockTranslator) Stats() vm.Stats {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Stats")
	return ret[0].(vm.Stats)
}

func (mr *MockTranslatorMockRecorder) Stats() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stats",
		reflect.TypeOf((*MockTranslator)(nil).Stats))
}

// MockCacheController is a hand-written go.uber.org/mock double for
// driver.CacheController.
type MockCacheController struct {
	ctrl     *gomock.Controller
	recorder *MockCacheControllerMockRecorder
}

type MockCacheControllerMockRecorder struct {
	mock *MockCacheController
}

func NewMockCacheController(ctrl *gomock.Controller) *MockCacheController {
	m := &MockCacheController{ctrl: ctrl}
	m.recorder = &MockCacheControllerMockRecorder{m}
	return m
}

func (m *MockCacheController) EXPECT() *MockCacheControllerMockRecorder {
	return m.recorder
}

func (m *MockCacheController) AccessMemory(address uint64, isWrite bool) string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AccessMemory", address, isWrite)
	return ret[0].(string)
}

func (mr *MockCacheControllerMockRecorder) AccessMemory(address, isWrite interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AccessMemory",
		reflect.TypeOf((*MockCacheController)(nil).AccessMemory), address, isWrite)
}

func (m *MockCacheController) Stats() cache.ControllerStats {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Stats")
	return ret[0].(cache.ControllerStats)
}

func (mr *MockCacheControllerMockRecorder) Stats() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stats",
		reflect.TypeOf((*MockCacheController)(nil).Stats))
}

func (m *MockCacheController) Level(name string) *cache.Level {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Level", name)
	lvl, _ := ret[0].(*cache.Level)
	return lvl
}

func (mr *MockCacheControllerMockRecorder) Level(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Level",
		reflect.TypeOf((*MockCacheController)(nil).Level), name)
}

func (m *MockCacheController) Reconfigure(name string, totalSize, blockSize uint64, assoc int, policy cache.Policy) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Reconfigure", name, totalSize, blockSize, assoc, policy)
	return asError(ret[0])
}

func (mr *MockCacheControllerMockRecorder) Reconfigure(name, totalSize, blockSize, assoc, policy interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reconfigure",
		reflect.TypeOf((*MockCacheController)(nil).Reconfigure),
		name, totalSize, blockSize, assoc, policy)
}

func asError(v interface{}) error {
	if v == nil {
		return nil
	}
	return v.(error)
}
