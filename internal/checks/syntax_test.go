package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSyntaxPython(t *testing.T) {
	ctx := context.Background()

	synErr, err := scanSyntax(ctx, Python, "print('Hello World')\n")
	require.NoError(t, err)
	assert.Nil(t, synErr)

	synErr, err = scanSyntax(ctx, Python, "print('Hello Word'\n")
	require.NoError(t, err)
	require.NotNil(t, synErr)
	assert.GreaterOrEqual(t, synErr.Line, 1)
	assert.Contains(t, synErr.String(), "SyntaxError (line ")
}

func TestScanSyntaxJava(t *testing.T) {
	ctx := context.Background()

	synErr, err := scanSyntax(ctx, Java, "public class Main { public static void main(String[] a) { int x = 1; } }")
	require.NoError(t, err)
	assert.Nil(t, synErr)

	synErr, err = scanSyntax(ctx, Java, "public class Main { void f() { int x = ; } }")
	require.NoError(t, err)
	assert.NotNil(t, synErr)
}

func TestScanSyntaxCPP(t *testing.T) {
	ctx := context.Background()

	synErr, err := scanSyntax(ctx, CPP, "int main() { return 0; }\n")
	require.NoError(t, err)
	assert.Nil(t, synErr)

	synErr, err = scanSyntax(ctx, CPP, "int main() { return 0 \n")
	require.NoError(t, err)
	assert.NotNil(t, synErr)
}

func TestScanSyntaxDocUnsupported(t *testing.T) {
	_, err := scanSyntax(context.Background(), Doc, "hello")
	assert.Error(t, err)
}
