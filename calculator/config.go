package calculator

import (
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"ductsize/fluid"
	"ductsize/network"
)

const DefaultConfigPath = "conf/config.ini"

type Config struct {
	// 平衡迭代
	MaxIterations int
	Tolerance     float64

	// 风量逐轮传递的最大轮数
	FlowPasses int

	RootFind fluid.Options

	ServerAddr string
	LogLevel   string
}

func DefaultConfig() Config {
	return Config{
		MaxIterations: 100,
		Tolerance:     1e-6,
		FlowPasses:    network.DefaultFlowPasses,
		RootFind:      fluid.DefaultOptions(),
		ServerAddr:    ":9000",
		LogLevel:      "info",
	}
}

// LoadConfig reads the ini file at path. A missing file or key keeps the default.
func LoadConfig(path string) Config {
	file, err := ini.Load(path)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Warn("配置文件读取错误，使用默认配置")
		return DefaultConfig()
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) Config {
	def := DefaultConfig()
	solver := file.Section("solver")
	rootfind := file.Section("rootfind")
	return Config{
		MaxIterations: solver.Key("max_iterations").MustInt(def.MaxIterations),
		Tolerance:     solver.Key("tolerance").MustFloat64(def.Tolerance),
		FlowPasses:    file.Section("flow").Key("max_passes").MustInt(def.FlowPasses),
		RootFind: fluid.Options{
			MaxRetries:    rootfind.Key("max_retries").MustInt(def.RootFind.MaxRetries),
			MaxSteps:      rootfind.Key("max_steps").MustInt(def.RootFind.MaxSteps),
			XTol:          rootfind.Key("xtol").MustFloat64(def.RootFind.XTol),
			FrictionGuess: rootfind.Key("friction_guess").MustFloat64(def.RootFind.FrictionGuess),
			DiameterGuess: rootfind.Key("diameter_guess").MustFloat64(def.RootFind.DiameterGuess),
		},
		ServerAddr: file.Section("server").Key("addr").MustString(def.ServerAddr),
		LogLevel:   file.Section("log").Key("level").MustString(def.LogLevel),
	}
}

// ApplyLogLevel sets the logrus level; an unknown name leaves it unchanged.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level")
		return
	}
	log.SetLevel(level)
}
