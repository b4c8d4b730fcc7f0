package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Таблица констант
	ConstInfo             Code = 1000
	ConstUnused           Code = 1001
	ConstUnresolved       Code = 1002
	ConstCycle            Code = 1003
	ConstSelfReference    Code = 1004
	ConstUnknownReference Code = 1005

	// Переписывание исходников
	RewriteInfo          Code = 2000
	RewriteUpdated       Code = 2001
	RewriteWouldChange   Code = 2002
	RewriteNoModuleBrace Code = 2003

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Проверка обновлений
	NotifyUpdateAvailable Code = 6001
	NotifyCheckFailed     Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	ConstInfo:             "Constant table information",
	ConstUnused:           "Constant is not used in file",
	ConstUnresolved:       "Constant value could not be resolved",
	ConstCycle:            "Circular constant reference",
	ConstSelfReference:    "Constant references itself",
	ConstUnknownReference: "Constant references an unknown name",
	RewriteInfo:           "Rewrite information",
	RewriteUpdated:        "File updated",
	RewriteWouldChange:    "File would be updated",
	RewriteNoModuleBrace:  "No module brace to anchor the constant block",
	IOLoadFileError:       "I/O load file error",
	IOWriteFileError:      "I/O write file error",
	NotifyUpdateAvailable: "A newer version is available",
	NotifyCheckFailed:     "Update check failed",
}

// ID returns the stable short identifier of the code, e.g. "CST1001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CST%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RWR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("NTF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
