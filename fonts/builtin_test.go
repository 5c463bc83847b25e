package fonts

import (
	"bytes"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"builtin:goregular", "built-in:gobold", "gomono", ""} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %q 失败: %v", name, err)
		}
		if len(data) < 4 {
			t.Fatalf("%q: 字体数据过短", name)
		}
	}
	reg, _ := Load("builtin:goregular")
	def, _ := Load("")
	if !bytes.Equal(reg, def) {
		t.Fatalf("空名称应回落到默认字体 %s", Default)
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("builtin:comic-sans"); err == nil {
		t.Fatalf("未知字体应返回错误")
	}
}

func TestIsBuiltin(t *testing.T) {
	if !IsBuiltin("builtin:gobold") || !IsBuiltin("built-in:gobold") {
		t.Fatalf("builtin 前缀未识别")
	}
	if IsBuiltin("fonts/Inter.ttf") {
		t.Fatalf("普通路径不是内置字体")
	}
	if len(Names()) != 6 {
		t.Fatalf("unexpected names: %v", Names())
	}
}
