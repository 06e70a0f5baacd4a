package mblink

import (
	"log"
	"os"
	"sync/atomic"
)

// 内部调试实现
type clogs struct {
	logger LogProvider
	// is log output enabled,1: enable, 0: disable
	hasLog uint32
}

// LogMode set enable or disable log output when you has set logger
func (sf *clogs) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.hasLog, 1)
	} else {
		atomic.StoreUint32(&sf.hasLog, 0)
	}
}

// SetLogProvider set logger provider
func (sf *clogs) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.logger = p
	}
}

// Errorf Log ERROR level message.
func (sf *clogs) Errorf(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.hasLog) == 1 {
		sf.logger.Errorf(format, v...)
	}
}

// Debugf Log DEBUG level message.
func (sf *clogs) Debugf(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.hasLog) == 1 {
		sf.logger.Debugf(format, v...)
	}
}

// default log
type logger struct {
	*log.Logger
}

var _ LogProvider = (*logger)(nil)

func newDefaultLogger(prefix string) *logger {
	return &logger{
		log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

// Errorf Log ERROR level message.
func (sf *logger) Errorf(format string, v ...interface{}) {
	sf.Printf("[E]: "+format, v...)
}

// Debugf Log DEBUG level message.
func (sf *logger) Debugf(format string, v ...interface{}) {
	sf.Printf("[D]: "+format, v...)
}
