package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"gopkg.in/yaml.v3"
)

// StartWatch 监听配置变化，在变更时回调 onChange(old, new)
// 仅在配置了 Nacos 时生效；使用本地文件配置时跳过监听
func StartWatch(ctx context.Context, onChange func(oldCfg, newCfg *Config)) error {
	nacosServerAddr := strings.TrimSpace(os.Getenv("NACOS_SERVER_ADDR"))
	if nacosServerAddr == "" {
		fmt.Println("[Config] Nacos 未配置，跳过配置监听")
		return nil
	}
	return startNacosWatch(ctx, onChange)
}

// startNacosWatch 启动 Nacos 配置监听
func startNacosWatch(ctx context.Context, onChange func(oldCfg, newCfg *Config)) error {
	serverAddr := strings.TrimSpace(os.Getenv("NACOS_SERVER_ADDR"))
	dataID := strings.TrimSpace(os.Getenv("NACOS_DATA_ID"))
	if dataID == "" {
		return fmt.Errorf("NACOS_DATA_ID not set")
	}

	namespace := getEnvOrDefault("NACOS_NAMESPACE", "public")
	group := getEnvOrDefault("NACOS_GROUP", "DEFAULT_GROUP")
	username := strings.TrimSpace(os.Getenv("NACOS_USERNAME"))
	password := strings.TrimSpace(os.Getenv("NACOS_PASSWORD"))

	timeoutMS := 5000
	if timeoutStr := strings.TrimSpace(os.Getenv("NACOS_TIMEOUT_MS")); timeoutStr != "" {
		if t, err := strconv.Atoi(timeoutStr); err == nil && t > 0 {
			timeoutMS = t
		}
	}

	serverConfigs, err := parseServerAddrs(serverAddr)
	if err != nil {
		return err
	}

	clientConfig := constant.ClientConfig{
		NamespaceId:         namespace,
		TimeoutMs:           uint64(timeoutMS),
		NotLoadCacheAtStart: true,
		LogDir:              "/tmp/nacos/log",
		CacheDir:            "/tmp/nacos/cache",
		LogLevel:            "warn",
	}
	if username != "" && password != "" {
		clientConfig.Username = username
		clientConfig.Password = password
	}

	configClient, err := clients.NewConfigClient(
		vo.NacosClientParam{
			ClientConfig:  &clientConfig,
			ServerConfigs: serverConfigs,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create nacos config client for watch: %w", err)
	}

	nacosConfigClient = configClient

	err = configClient.ListenConfig(vo.ConfigParam{
		DataId: dataID,
		Group:  group,
		OnChange: func(namespace, group, dataId, data string) {
			fmt.Printf("[Config] Nacos 配置变更: namespace=%s, group=%s, dataId=%s\n",
				namespace, group, dataId)

			var newCfg Config
			var parseErr error
			switch filepath.Ext(dataId) {
			case ".json":
				parseErr = json.Unmarshal([]byte(data), &newCfg)
			case ".yaml", ".yml":
				parseErr = yaml.Unmarshal([]byte(data), &newCfg)
			default:
				parseErr = yaml.Unmarshal([]byte(data), &newCfg)
				if parseErr != nil {
					parseErr = json.Unmarshal([]byte(data), &newCfg)
				}
			}
			if parseErr != nil {
				fmt.Printf("[Config] 解析 Nacos 配置失败: error=%v\n", parseErr)
				return
			}

			oldCfg := GetCurrent()
			SetCurrent(&newCfg)

			if onChange != nil {
				onChange(oldCfg, &newCfg)
			}

			fmt.Println("[Config] Nacos 配置已更新")
		},
	})
	if err != nil {
		return fmt.Errorf("failed to listen nacos config: %w", err)
	}

	fmt.Printf("[Config] Nacos 配置监听已启动: server=%s, dataId=%s, namespace=%s, group=%s\n",
		serverAddr, dataID, namespace, group)

	return nil
}
