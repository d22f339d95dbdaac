package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"ptsched/internal/domain"
)

func TestParser_FindTestCases(t *testing.T) {
	parser := NewParser()

	tmpDir, err := os.MkdirTemp("", "ptsched-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "UserTest.php")
	phpContent := `<?php

class UserTest extends TestCase
{
    public function testCreateUser()
    {
    }

    protected function testUpdateUser()
    {
    }

    private function test_delete_user()
    {
    }

    /**
     * @test
     */
    public function itArchivesUsers()
    {
    }

    public function helperMethod()
    {
    }
}
`
	if err := os.WriteFile(testFile, []byte(phpContent), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Run("finds named and annotated test methods", func(t *testing.T) {
		cases, err := parser.FindTestCases(domain.ClassName(testFile))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		found := make(map[string]bool)
		for _, tc := range cases {
			found[tc] = true
		}

		for _, expected := range []string{"testCreateUser", "testUpdateUser", "test_delete_user", "itArchivesUsers"} {
			if !found[expected] {
				t.Errorf("expected to find test case %s, got %v", expected, cases)
			}
		}
		if found["helperMethod"] {
			t.Error("should not find helperMethod as a test case")
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.FindTestCases("/non/existent/file.php")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}
