package notifier

import "github.com/grafana/regexp"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// domainPattern accepts a bare SES domain identity such as example.com.
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*[a-zA-Z0-9]$`)
)

func ValidEmail(address string) bool {
	if address == "" {
		return false
	}

	return emailPattern.MatchString(address) || domainPattern.MatchString(address)
}
