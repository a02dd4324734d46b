package main

import "go.uber.org/zap"

var readerLog = zap.NewNop()
var convertLog = zap.NewNop()

func enableDebugLogging(l *zap.Logger) {
	readerLog = l
	convertLog = l
}
