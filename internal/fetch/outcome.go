package fetch

// OutcomeKind 区分一次模块抓取的四种结果。
type OutcomeKind int

const (
	OutcomeFailed OutcomeKind = iota
	OutcomeArchived
	OutcomeFileSet
	OutcomeAbsent
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeArchived:
		return "archived"
	case OutcomeFileSet:
		return "fileset"
	case OutcomeAbsent:
		return "absent"
	default:
		return "failed"
	}
}

// Outcome 是单个模块在一次运行中的唯一结果。
type Outcome struct {
	Module string
	Kind   OutcomeKind
	// Handle 为归档在虚拟文件系统中的路径，仅 Archived 有效。
	Handle string
	// Files 为写入的文件数，仅 FileSet 有效。
	Files int
	// Err 为失败原因；被降级为 Absent 的可选模块同样保留原因。
	Err error
}

func archived(module, handle string) Outcome {
	return Outcome{Module: module, Kind: OutcomeArchived, Handle: handle}
}

func fileSet(module string, count int) Outcome {
	return Outcome{Module: module, Kind: OutcomeFileSet, Files: count}
}

func absent(module string, reason error) Outcome {
	return Outcome{Module: module, Kind: OutcomeAbsent, Err: reason}
}

func failed(module string, err error) Outcome {
	return Outcome{Module: module, Kind: OutcomeFailed, Err: err}
}

// Retrieved 表示模块内容已经写入虚拟文件系统。
func (o Outcome) Retrieved() bool {
	return o.Kind == OutcomeArchived || o.Kind == OutcomeFileSet
}
