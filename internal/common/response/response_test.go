package response

import "testing"

func TestErrorMessagesComplete(t *testing.T) {
	codes := []int{
		CodeSuccess,
		CodeBadRequest,
		CodeBusinessError,
		CodePartialSettle,
		CodeRateLimitExceeded,
		CodeNotFound,
		CodeSystemError,
	}
	for _, code := range codes {
		if msg := getErrorMessage(code); msg == "" || msg == "未知错误" {
			t.Fatalf("code %d has no message", code)
		}
	}
}

func TestGetErrorMessageUnknown(t *testing.T) {
	if msg := getErrorMessage(-12345); msg != "未知错误" {
		t.Fatalf("unknown code message = %q", msg)
	}
}
