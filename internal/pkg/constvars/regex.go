package constvars

const (
	RegexResourceType = `^[A-Z][A-Za-z]+$`
	RegexResourceID   = `^[A-Za-z0-9\-\.:_]{1,128}$`
)
