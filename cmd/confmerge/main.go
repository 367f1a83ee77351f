package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gopkg.in/yaml.v2"

	"github.com/spf13/viper"
)

const baseConfigName = "values_base"

// mergeOverlay накладывает overlay-файл на базовый конфиг и пишет
// итоговый configs/values_<env>.yaml рядом с базой.
func mergeOverlay(base *viper.Viper, file string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	result := viper.New()
	if err := result.MergeConfigMap(base.AllSettings()); err != nil {
		return "", errors.Wrap(err, "merge base settings")
	}

	overlay := viper.New()
	overlay.SetConfigFile(file)
	if err := overlay.ReadInConfig(); err != nil {
		return "", errors.Wrap(err, "read overlay")
	}
	if err := result.MergeConfigMap(overlay.AllSettings()); err != nil {
		return "", errors.Wrap(err, "merge overlay settings")
	}

	allSettings := result.AllSettings()
	bs, err := yaml.Marshal(allSettings)
	if err != nil {
		return "", errors.Wrap(err, "marshal config to yaml")
	}

	outFile := filepath.Join("configs", fmt.Sprintf("values_%s.yaml", name))
	_ = os.Remove(outFile)
	out, err := os.Create(outFile)
	if err != nil {
		return "", errors.Wrap(err, "create merged config file")
	}
	defer func() { _ = out.Close() }()
	if _, err = out.WriteString(string(bs)); err != nil {
		_ = os.Remove(out.Name())
		return "", errors.Wrap(err, "write content")
	}
	return out.Name(), nil
}

func main() {
	viper.SetConfigName(baseConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	overlays, err := filepath.Glob(filepath.Join("configs", "overlays", "*.yaml"))
	if err != nil {
		panic(fmt.Errorf("get overlay glob: %w", err))
	}
	if len(overlays) == 0 {
		panic("has no overlays in configs/overlays")
	}

	for _, file := range overlays {
		outFile, mErr := mergeOverlay(viper.GetViper(), file)
		if mErr != nil {
			panic(fmt.Errorf("can't merge overlay: %w", mErr))
		}
		fmt.Printf("%s file complete\n", outFile)
	}
	fmt.Println("done")
}
