/*
包 tokenizer 在调用前估算提示词的 token 数，用于成本预估。

OpenAI 系列模型使用 tiktoken（编码数据首次使用时加载）；其余模型以及
tiktoken 无法初始化时，使用区分 CJK 与 ASCII 的字符估算器。
*/
package tokenizer
