// graphql-upload is a GraphQL client that uploads files.
//
// Files found in the variables or extensions of an operation are sent as a GraphQL multipart request
// (https://github.com/jaydenseric/graphql-multipart-request-spec): an "operations" field holding the
// operation with every file replaced by null, a "map" field telling the server where each file belongs
// and one field per distinct file. Operations without files are sent as regular GraphQL POST or GET requests.
//
// The library lives in pkg/uploadlink, the extraction of files in pkg/extractfiles
// and the assembly of the multipart body in pkg/multipartform.
//
// Example usage:
//
//	graphql-upload send --endpoint http://localhost:4000/graphql \
//		--query 'mutation ($files: [Upload!]!) { upload(files: $files) { id } }' \
//		--variables '{"files":[null,null]}' \
//		--file files.0=./a.png --file files.1=./b.png
package main
