package bootstrap

import (
	"fmt"
	"strings"
)

// ResolveDependencies orders initializers so that every initializer runs
// after its dependencies. Initializers without an ordering constraint keep
// their input order, so the result is the same on every run.
// Returns error if circular dependency is detected or if a dependency is not found.
func ResolveDependencies(initializers []Initializer) ([]Initializer, error) {
	if len(initializers) == 0 {
		return nil, nil
	}

	// 构建名称到初始化器的映射
	nameToInit := make(map[string]Initializer, len(initializers))
	for _, init := range initializers {
		if _, exists := nameToInit[init.Name()]; exists {
			return nil, fmt.Errorf("duplicate initializer name: %s", init.Name())
		}
		nameToInit[init.Name()] = init
	}

	// 验证所有依赖都存在
	for _, init := range initializers {
		for _, dep := range init.Dependencies() {
			if _, exists := nameToInit[dep]; !exists {
				return nil, fmt.Errorf("initializer %q depends on %q which is not registered", init.Name(), dep)
			}
		}
	}

	if err := validateNoCycles(initializers); err != nil {
		return nil, err
	}

	return stableTopologicalSort(initializers), nil
}

// validateNoCycles walks the dependency graph depth first with three-color
// marking and reports the first cycle it finds.
func validateNoCycles(initializers []Initializer) error {
	const (
		white = iota // 未访问
		gray         // 在当前 DFS 路径中
		black        // 已完成
	)

	deps := make(map[string][]string, len(initializers))
	for _, init := range initializers {
		deps[init.Name()] = init.Dependencies()
	}

	color := make(map[string]int, len(initializers))
	var path []string

	var dfs func(node string) error
	dfs = func(node string) error {
		color[node] = gray
		path = append(path, node)

		for _, dep := range deps[node] {
			switch color[dep] {
			case gray:
				return fmt.Errorf("circular dependency detected: %s", cyclePath(path, dep))
			case white:
				if err := dfs(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[node] = black
		return nil
	}

	for _, init := range initializers {
		if color[init.Name()] == white {
			if err := dfs(init.Name()); err != nil {
				return err
			}
		}
	}

	return nil
}

// cyclePath renders the part of path that starts at dep, closed by dep.
func cyclePath(path []string, dep string) string {
	start := 0
	for i, name := range path {
		if name == dep {
			start = i
			break
		}
	}

	cycle := append([]string(nil), path[start:]...)
	cycle = append(cycle, dep)
	return strings.Join(cycle, " -> ")
}

// stableTopologicalSort repeatedly takes the first initializer, in input
// order, whose dependencies have all been placed. The graph must be acyclic.
func stableTopologicalSort(initializers []Initializer) []Initializer {
	placed := make(map[string]bool, len(initializers))
	result := make([]Initializer, 0, len(initializers))

	for len(result) < len(initializers) {
		for _, init := range initializers {
			if placed[init.Name()] || !ready(init, placed) {
				continue
			}
			placed[init.Name()] = true
			result = append(result, init)
			break
		}
	}

	return result
}

func ready(init Initializer, placed map[string]bool) bool {
	for _, dep := range init.Dependencies() {
		if !placed[dep] {
			return false
		}
	}
	return true
}
