package gen

// Generator renders the files of one output target.
type Generator interface {
	// Name identifies the generator in logs and errors.
	Name() string
	// Tasks lists the files to render for the classes and endpoints in scope.
	Tasks(gc *Context) ([]Task, error)
}

// DomainTarget is implemented by generators that read domain implementations.
// Every domain of the registry must provide an implementation for the target.
type DomainTarget interface {
	DomainTarget() string
}

// TagFilter is implemented by generators restricted to classes and
// endpoints carrying at least one of the returned tags.
type TagFilter interface {
	Tags() []string
}

// Task renders one output file.
type Task struct {
	// Path of the file, relative to the target directory, slash separated.
	Path string
	// Unit names the class, endpoint file or module rendered.
	Unit string
	// Render produces the file content.
	Render func() ([]byte, error)
}

// TasksFunc lists the tasks of a generator.
type TasksFunc func(*Context) ([]Task, error)

// Hook wraps a generator, for example to add or filter its tasks.
//
//	func skipTests(next gen.Generator) gen.Generator {
//		return gen.WrapTasks(next, func(gc *gen.Context) ([]gen.Task, error) {
//			tasks, err := next.Tasks(gc)
//			...
//		})
//	}
type Hook func(Generator) Generator

// WrapTasks returns a generator with the identity and optional interfaces of g
// whose tasks are listed by fn.
func WrapTasks(g Generator, fn TasksFunc) Generator {
	return &wrapped{inner: g, tasks: fn}
}

type wrapped struct {
	inner Generator
	tasks TasksFunc
}

func (w *wrapped) Name() string { return w.inner.Name() }

func (w *wrapped) Tasks(gc *Context) ([]Task, error) { return w.tasks(gc) }

func (w *wrapped) DomainTarget() string {
	if t, ok := w.inner.(DomainTarget); ok {
		return t.DomainTarget()
	}
	return ""
}

func (w *wrapped) Tags() []string {
	if t, ok := w.inner.(TagFilter); ok {
		return t.Tags()
	}
	return nil
}

// StaticTask returns a task rendering fixed content.
func StaticTask(path, unit string, content []byte) Task {
	return Task{
		Path:   path,
		Unit:   unit,
		Render: func() ([]byte, error) { return content, nil },
	}
}
