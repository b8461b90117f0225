package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader 统一配置加载器。
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("retrieval.yaml").
//	    WithEnvPrefix("ANSWERCORE").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量。
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader 创建配置加载器。
func NewLoader() *Loader {
	return &Loader{envPrefix: "ANSWERCORE"}
}

// WithConfigPath 设置 YAML 配置文件路径。
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀。
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load 加载并归一化配置。
func (l *Loader) Load() (*RetrievalConfig, error) {
	cfg := DefaultRetrievalConfig()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.configPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", l.configPath, err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg = MergeWithDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv 按字段的 env 标签应用环境变量覆盖。
func (l *Loader) applyEnv(cfg *RetrievalConfig) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		raw, ok := os.LookupEnv(l.envPrefix + "_" + tag)
		if !ok {
			continue
		}
		if err := setField(v.Field(i), raw); err != nil {
			return fmt.Errorf("config: env %s_%s: %w", l.envPrefix, tag, err)
		}
	}
	return nil
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Pointer:
		// *bool 开关字段
		if f.Type().Elem().Kind() != reflect.Bool {
			return fmt.Errorf("unsupported field type %s", f.Type())
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(&b))
	case reflect.Float64:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		f.SetFloat(x)
	case reflect.Int, reflect.Int64:
		// time.Duration 同为 int64，支持 "15s" 写法
		if f.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			f.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

// MustLoad Load 的 panic 版本，用于初始化阶段。
func (l *Loader) MustLoad() *RetrievalConfig {
	cfg, err := l.Load()
	if err != nil {
		panic(strings.TrimSpace(err.Error()))
	}
	return cfg
}
