package resp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadCommandMultiBulk(t *testing.T) {
	argv, err := ReadCommand(reader("*3\r\n$4\r\nSADD\r\n$1\r\ns\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)
	require.Len(t, argv, 3)
	assert.Equal(t, "SADD", string(argv[0]))
	assert.Equal(t, "s", string(argv[1]))
	assert.Equal(t, "foo", string(argv[2]))
}

func TestReadCommandInline(t *testing.T) {
	argv, err := ReadCommand(reader("SCARD  mykey\r\n"))
	require.NoError(t, err)
	require.Len(t, argv, 2)
	assert.Equal(t, "SCARD", string(argv[0]))
	assert.Equal(t, "mykey", string(argv[1]))
}

func TestReadCommandEmptyLine(t *testing.T) {
	argv, err := ReadCommand(reader("\r\n"))
	require.NoError(t, err)
	assert.Nil(t, argv)
}

func TestReadCommandBinarySafe(t *testing.T) {
	argv, err := ReadCommand(reader("*1\r\n$4\r\na\r\nb\r\n"))
	require.NoError(t, err)
	require.Len(t, argv, 1)
	assert.Equal(t, "a\r\nb", string(argv[0]))
}

func TestReadCommandMalformed(t *testing.T) {
	_, err := ReadCommand(reader("*x\r\n"))
	assert.Error(t, err)

	_, err = ReadCommand(reader("*1\r\n:5\r\n"))
	assert.Error(t, err)
}

func TestReadReplyScalars(t *testing.T) {
	node, err := ReadReply(reader("+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, SimpleString{Value: "OK"}, node)

	node, err = ReadReply(reader("-ERR syntax error\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Error{Message: "ERR syntax error"}, node)

	node, err = ReadReply(reader(":42\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: 42}, node)

	node, err = ReadReply(reader("$3\r\nfoo\r\n"))
	require.NoError(t, err)
	assert.Equal(t, BlobString{Value: "foo"}, node)

	node, err = ReadReply(reader("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Null{}, node)
}

func TestReadReplyArray(t *testing.T) {
	node, err := ReadReply(reader("*2\r\n$1\r\na\r\n:7\r\n"))
	require.NoError(t, err)
	arr, ok := node.(Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 2)
	assert.Equal(t, BlobString{Value: "a"}, arr.Elements[0])
	assert.Equal(t, Integer{Value: 7}, arr.Elements[1])
}

func TestReadReplyNestedArray(t *testing.T) {
	node, err := ReadReply(reader("*2\r\n$1\r\n0\r\n*2\r\n$1\r\na\r\n$1\r\nb\r\n"))
	require.NoError(t, err)
	arr := node.(Array)
	inner, ok := arr.Elements[1].(Array)
	require.True(t, ok)
	assert.Len(t, inner.Elements, 2)
}
