// Package main 提供 remotesvc 守护进程入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dep2p/go-remotesvc"
	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
)

var logger = log.Logger("remotesvc/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖 / 快速测试
//	JSON 配置文件：持久化配置 / 长期运行
var (
	// 运行时参数
	httpPort   = flag.Int("http-port", 0, "共享 HTTP 服务器端口（0 = 随机端口）")
	configFile = flag.String("config", "", "配置文件路径")

	// 发现后端开关
	enableMulticast = flag.Bool("multicast", true, "启用组播 UDP 发现")
	enableMDNS      = flag.Bool("mdns", false, "启用 mDNS 发现")
	enableMQTT      = flag.Bool("mqtt", false, "启用 MQTT 发现")
	enableRedis     = flag.Bool("redis", false, "启用 Redis 发现")
	enableZK        = flag.Bool("zookeeper", false, "启用 ZooKeeper 发现")

	mqttBroker = flag.String("mqtt-broker", "", "MQTT broker 地址")
	redisAddr  = flag.String("redis-addr", "", "Redis 服务器地址")
	zkServers  = flag.String("zk-servers", "", "ZooKeeper 地址列表（逗号分隔）")

	// 日志参数
	logLevel = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")

	// 信息显示
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println("remotesvc", remotesvc.Version)
		return nil
	}

	log.SetLevel(log.ParseLevel(*logLevel))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fw, err := remotesvc.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := fw.Close(); err != nil {
			logger.Warn("框架停止失败", "error", err)
		}
	}()

	logger.Info("remotesvc 运行中",
		"uid", fw.FrameworkUID(),
		"httpPort", fw.HTTPPort(),
		"servlet", fw.ServletPath())

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭")
	return nil
}

// loadConfig 加载配置（文件为基底，命令行参数覆盖）
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		cfg, err = config.FromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if *httpPort > 0 {
		cfg.Dispatch.HTTPPort = *httpPort
	}

	cfg.Discovery.EnableMulticast = *enableMulticast
	cfg.Discovery.EnableMDNS = *enableMDNS
	cfg.Discovery.EnableMQTT = *enableMQTT
	cfg.Discovery.EnableRedis = *enableRedis
	cfg.Discovery.EnableZooKeeper = *enableZK

	if *mqttBroker != "" {
		cfg.Discovery.MQTT.Broker = *mqttBroker
	}
	if *redisAddr != "" {
		cfg.Discovery.Redis.Addr = *redisAddr
	}
	if *zkServers != "" {
		cfg.Discovery.ZooKeeper.Servers = strings.Split(*zkServers, ",")
	}

	return cfg, nil
}
