package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/tsinghua-fib-lab/odrmap/hdmap"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
	"github.com/tsinghua-fib-lab/odrmap/utils/input"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 查询离(x, y)最近的道路，格式为"x,y"
	nearest = flag.String("nearest", "", "query the nearest road of a point, e.g. 12.5,-3")
	// 查询最短道路序列，格式为"from,to"
	route = flag.String("route", "", "query the shortest road route, e.g. 1,3")
	// 将加载后的路网重新导出为YAML文档
	exportPath = flag.String("export", "", "export the loaded network as a yaml document")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "odrmap")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panic(err)
	}

	// 加载路网
	doc, err := input.Load(context.Background(), c.Input)
	if err != nil {
		log.Panicf("input load err: %+v", err)
	}
	m := hdmap.New(rc)
	if err := m.Load(doc); err != nil {
		log.Panicf("network load err: %v", err)
	}

	if *nearest != "" {
		xy := parsePair(*nearest, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
		r, pos, err := m.NearestRoad(xy[0], xy[1])
		if err != nil {
			log.Errorf("nearest road of %v: %v", xy, err)
		} else {
			log.Infof("nearest road of %v: %v at %v", xy, r, pos)
		}
	}
	if *route != "" {
		ids := parsePair(*route, func(s string) (int32, error) {
			v, err := strconv.ParseInt(s, 10, 32)
			return int32(v), err
		})
		roads, length, err := m.ShortestRoute(ids[0], ids[1])
		if err != nil {
			log.Errorf("route %v: %v", ids, err)
		} else {
			log.Infof("route %v: %v, length %.3f", ids, roads, length)
		}
	}
	if *exportPath != "" {
		if err := input.SaveFile(m.Document(), *exportPath); err != nil {
			log.Panicf("export err: %v", err)
		}
		log.Infof("exported network to %s", *exportPath)
	}
	if c.Output != nil {
		data, err := m.GeoJSON(c.Output.Step).MarshalJSON()
		if err != nil {
			log.Panicf("geojson marshal err: %v", err)
		}
		if err := os.WriteFile(c.Output.GeoJSON, data, 0o644); err != nil {
			log.Panicf("geojson write err: %v", err)
		}
		log.Infof("wrote geojson to %s", c.Output.GeoJSON)
	}
}

// parsePair 解析"a,b"格式的参数
func parsePair[T any](s string, parse func(string) (T, error)) [2]T {
	var out [2]T
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		log.Panicf("%q must be in the form a,b", s)
	}
	for i, p := range parts {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			log.Panicf("parse %q: %v", s, err)
		}
		out[i] = v
	}
	return out
}
